package user

import (
	"context"
	"errors"

	"github.com/rokotuskortti/vaccination-erecord/internal/session"
)

// Directory adapts the user store to the session gate's narrow view of
// a user record.
type Directory struct {
	store Store
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

func (d *Directory) ByUsername(ctx context.Context, username string) (*session.User, error) {
	u, err := d.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, session.ErrNoSuchUser
		}
		return nil, err
	}
	return toSessionUser(u), nil
}

func (d *Directory) ByID(ctx context.Context, id int64) (*session.User, error) {
	u, err := d.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, session.ErrNoSuchUser
		}
		return nil, err
	}
	return toSessionUser(u), nil
}

func toSessionUser(u *User) *session.User {
	return &session.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
	}
}
