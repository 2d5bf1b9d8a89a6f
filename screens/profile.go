package screens

import (
	"context"

	"aora/gateway"
	"aora/notify"
	"aora/schemas"
)

type Profile struct {
	session   *gateway.Session
	accounts  Accounts
	listings  Listings
	navigator Navigator
	notifier  notify.Notifier
}

func NewProfile(session *gateway.Session, accounts Accounts, listings Listings, navigator Navigator, notifier notify.Notifier) *Profile {
	return &Profile{session: session, accounts: accounts, listings: listings, navigator: navigator, notifier: notifier}
}

// Posts lists the posts of the signed-in user.
func (p *Profile) Posts(ctx context.Context) ([]*schemas.Post, error) {
	account, ok := p.session.Account()
	if !ok {
		p.navigator.Replace(RouteSignIn)
		return nil, schemas.ErrNotAuthenticated
	}
	posts, err := p.listings.ListUserPosts(ctx, account.ID)
	if err != nil {
		notify.Error(p.notifier, err.Error())
		return nil, err
	}
	return posts, nil
}

// Logout leaves the app signed out even when the backend call fails.
func (p *Profile) Logout(ctx context.Context) error {
	err := p.accounts.SignOut(ctx)
	if err != nil {
		notify.Error(p.notifier, err.Error())
	}
	p.navigator.Replace(RouteSignIn)
	return err
}
