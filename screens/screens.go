package screens

import (
	"context"

	"aora/form"
	"aora/schemas"
)

const (
	RouteHome   = "/home"
	RouteEdit   = "/edit"
	RouteSignIn = "/sign-in"

	ParamPostID = "postId"
)

type Navigator interface {
	Push(route string, params map[string]string)
	Replace(route string)
}

type Accounts interface {
	SignIn(ctx context.Context, email, password string) (*schemas.Account, error)
	SignUp(ctx context.Context, email, password, username string) (*schemas.Account, error)
	SignOut(ctx context.Context) error
}

type Posts interface {
	GetPostByID(ctx context.Context, id schemas.PostId) (*schemas.Post, error)
	CreatePost(ctx context.Context, draft form.Draft) (*schemas.Post, error)
	UpdatePost(ctx context.Context, id schemas.PostId, patch schemas.PostPatch) (*schemas.Post, error)
}

type Listings interface {
	ListLatestPosts(ctx context.Context) ([]*schemas.Post, error)
	SearchPosts(ctx context.Context, term string) ([]*schemas.Post, error)
	ListUserPosts(ctx context.Context, creator schemas.UserId) ([]*schemas.Post, error)
}
