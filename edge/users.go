package edge

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-provision/core"
)

// FindUserByEmail searches enabled users with the email as keyword and keeps
// only an exact case-insensitive match. The keyword search is fuzzy on the
// remote side, so the match has to happen here.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (core.User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return core.User{}, false, goerrors.New("edge: email is required", goerrors.CategoryBadInput).
			WithTextCode(core.ProvisionErrorBadInput)
	}

	env, err := c.call(ctx, "/UserService/listEnabledUsers", map[string]any{
		"keyword": email,
		"offset":  0,
		"size":    100,
	})
	if err != nil {
		return core.User{}, false, err
	}

	for _, entry := range readSlice(env.Data, "users") {
		if strings.EqualFold(strings.TrimSpace(readString(entry, "email")), email) {
			return userFromMap(entry), true, nil
		}
	}
	return core.User{}, false, nil
}

// CreateUser creates a remote user and returns its id. When the response
// signals success without an id in any known shape, the user is re-resolved
// by email.
func (c *Client) CreateUser(ctx context.Context, in core.CreateUserInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryBadInput, "edge: invalid create user input").
			WithTextCode(core.ProvisionErrorBadInput)
	}

	payload := map[string]any{
		"username": strings.TrimSpace(in.Username),
		"password": in.Password,
		"email":    strings.TrimSpace(in.Email),
		"fullname": strings.TrimSpace(in.Fullname),
		"mobile":   strings.TrimSpace(in.Mobile),
		"tel":      strings.TrimSpace(in.Tel),
		"remark":   strings.TrimSpace(in.Remark),
		"source":   strings.TrimSpace(in.Source),
	}
	// Placement is best-effort: the platform picks a cluster when omitted.
	if clusterID, err := c.DefaultClusterID(ctx); err != nil {
		c.logger.Warn("default cluster lookup failed, creating user without placement",
			"error", err.Error(),
		)
	} else if clusterID > 0 {
		payload["nodeClusterId"] = clusterID
	}

	env, err := c.call(ctx, "/UserService/createUser", payload)
	if err != nil {
		return 0, err
	}

	if id, ok := env.createdID("userId"); ok {
		return id, nil
	}
	if !env.indicatesSuccess() {
		return 0, protocolError("/UserService/createUser", env)
	}

	// Some deployments omit the id entirely on success.
	user, found, err := c.FindUserByEmail(ctx, in.Email)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, goerrors.New("edge: user created but could not be resolved by email", goerrors.CategoryExternal).
			WithTextCode(core.ProvisionErrorRemoteFailure).
			WithMetadata(map[string]any{"email": in.Email})
	}
	return user.ID, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (core.User, bool, error) {
	env, err := c.call(ctx, "/UserService/findEnabledUser", map[string]any{"userId": userID})
	if err != nil {
		if isNotFoundError(err) {
			return core.User{}, false, nil
		}
		return core.User{}, false, err
	}
	entry, ok := readMap(env.Data, "user")
	if !ok || len(entry) == 0 {
		return core.User{}, false, nil
	}
	user := userFromMap(entry)
	if user.ID == 0 {
		user.ID = userID
	}
	return user, true, nil
}

// DeleteUser removes a remote user. A user that no longer exists counts as
// deleted.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	_, err := c.call(ctx, "/UserService/deleteUser", map[string]any{"userId": userID})
	if err != nil && !isNotFoundError(err) {
		return err
	}
	return nil
}

func userFromMap(entry map[string]any) core.User {
	return core.User{
		ID:        readInt64(entry, "id"),
		Username:  readString(entry, "username"),
		Email:     readString(entry, "email"),
		Fullname:  readString(entry, "fullname"),
		Mobile:    readString(entry, "mobile"),
		Status:    core.StatusFromEnabled(readBool(entry, "isOn")),
		Verified:  readBool(entry, "isVerified"),
		CreatedAt: readInt64(entry, "createdAt"),
		UpdatedAt: readInt64(entry, "updatedAt"),
	}
}
