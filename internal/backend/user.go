package backend

import (
	"context"
	"fmt"
	"net/http"
)

// Claim types carried by the identity payload.
const (
	NameClaim  = "name"
	EmailClaim = "email"
)

// Claim is one typ/val pair of the identity payload.
type Claim struct {
	Typ string `json:"typ"`
	Val string `json:"val"`
}

// User is the signed-in identity, reduced from a claim list. Zero value
// means nobody is signed in.
type User struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserFromClaims reduces a claim list to the identity it describes. An
// empty list yields the signed-out zero value.
func UserFromClaims(claims []Claim) User {
	var u User
	for _, cl := range claims {
		switch cl.Typ {
		case NameClaim:
			u.Name = cl.Val
		case EmailClaim:
			u.Email = cl.Val
		}
	}
	return u
}

// userRecord is the backend's stored user row. Only the password is
// inspected here.
type userRecord struct {
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Authenticate checks a username and password against the user
// endpoint and returns the resulting identity claims. Wrong credentials
// return empty claims with a nil error so callers can tell them apart
// from transport trouble.
func (c *Client) Authenticate(ctx context.Context, username, password string) ([]Claim, error) {
	url := c.url(c.cfg.Endpoints.User, "") + "/" + username

	var records []userRecord
	if err := c.getJSON(ctx, url, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 || records[0].Password != password {
		return nil, nil
	}

	claims := []Claim{{Typ: NameClaim, Val: username}}
	if records[0].Email != "" {
		claims = append(claims, Claim{Typ: EmailClaim, Val: records[0].Email})
	}
	return claims, nil
}

// CreateUser registers a new user record.
func (c *Client) CreateUser(ctx context.Context, username, password, email string) error {
	body := map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	}
	return c.sendJSON(ctx, http.MethodPost, c.url(c.cfg.Endpoints.User, ""), body, nil)
}

// Rights lists the operations a user may perform.
type Rights struct {
	CanEdit bool `json:"canEdit"`
	CanBook bool `json:"canBook"`
}

// FetchUserRights fetches the editing rights for a user id.
func (c *Client) FetchUserRights(ctx context.Context, id string) (Rights, error) {
	url := fmt.Sprintf("%s/%s", c.url(c.cfg.Endpoints.UserRights, ""), id)
	var r Rights
	if err := c.getJSON(ctx, url, &r); err != nil {
		return Rights{}, err
	}
	return r, nil
}
