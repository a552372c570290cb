package cognito

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/dispatch"
	"github.com/rs/zerolog/log"
)

const (
	contentType = "application/x-amz-json-1.1"
	errorPrefix = "com.amazonaws.cognitoidp"
)

// Handler dispatches AWSCognitoIdentityProviderService's AWS JSON 1.1
// actions (spec.md §6.2).
type Handler struct {
	reg *Registry
}

// NewHandler wraps a Registry for HTTP dispatch.
func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers the single POST / entry point all AWS JSON actions
// arrive on.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, action, ok := dispatch.JSONTarget(r)
	if !ok {
		dispatch.WriteJSONError(w, contentType, errorPrefix, ErrorTable, apperr.New(apperr.InvalidArgument, "missing X-Amz-Target"))
		return
	}

	var err error
	switch action {
	case "CreateUserPool":
		err = h.createUserPool(w, r)
	case "DescribeUserPool":
		err = h.describeUserPool(w, r)
	case "DeleteUserPool":
		err = h.deleteUserPool(w, r)
	case "ListUserPools":
		err = h.listUserPools(w, r)
	case "AdminCreateUser":
		err = h.adminCreateUser(w, r)
	case "AdminGetUser":
		err = h.adminGetUser(w, r)
	case "AdminDeleteUser":
		err = h.adminDeleteUser(w, r)
	case "ListUsers":
		err = h.listUsers(w, r)
	default:
		err = apperr.New(apperr.UnsupportedOperation, "unsupported action: "+action)
	}

	if err != nil {
		log.Debug().Str("service", "cognito").Str("action", action).Err(err).Msg("request failed")
		dispatch.WriteJSONError(w, contentType, errorPrefix, ErrorTable, err)
	}
}

type poolWire struct {
	Id           string `json:"Id"`
	Name         string `json:"Name"`
	Arn          string `json:"Arn"`
	CreationDate int64  `json:"CreationDate"`
}

func toPoolWire(p *UserPool) poolWire {
	return poolWire{Id: p.ID, Name: p.Name, Arn: p.ARN, CreationDate: time.Now().Unix()}
}

func (h *Handler) createUserPool(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		PoolName string `json:"PoolName"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	pool := h.reg.CreatePool(req.PoolName, time.Now().UTC().Format(time.RFC3339))
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"UserPool": toPoolWire(pool)})
	return nil
}

func (h *Handler) describeUserPool(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		UserPoolId string `json:"UserPoolId"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	pool, err := h.reg.Get(req.UserPoolId)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"UserPool": toPoolWire(pool)})
	return nil
}

func (h *Handler) deleteUserPool(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		UserPoolId string `json:"UserPoolId"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	h.reg.DeletePool(req.UserPoolId)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) listUserPools(w http.ResponseWriter, r *http.Request) error {
	pools := h.reg.ListPools()
	items := make([]poolWire, 0, len(pools))
	for _, p := range pools {
		items = append(items, toPoolWire(p))
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"UserPools": items})
	return nil
}

type userWire struct {
	Username       string `json:"Username"`
	UserStatus     string `json:"UserStatus"`
	UserCreateDate int64  `json:"UserCreateDate"`
}

func toUserWire(u *User) userWire {
	return userWire{Username: u.Username, UserStatus: u.UserStatus, UserCreateDate: time.Now().Unix()}
}

func (h *Handler) adminCreateUser(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		UserPoolId     string `json:"UserPoolId"`
		Username       string `json:"Username"`
		UserAttributes []struct {
			Name  string `json:"Name"`
			Value string `json:"Value"`
		} `json:"UserAttributes"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	pool, err := h.reg.Get(req.UserPoolId)
	if err != nil {
		return err
	}
	attrs := make(map[string]string, len(req.UserAttributes))
	for _, a := range req.UserAttributes {
		attrs[a.Name] = a.Value
	}
	u := pool.CreateUser(req.Username, attrs, time.Now().UTC().Format(time.RFC3339))
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"User": toUserWire(u)})
	return nil
}

func (h *Handler) adminGetUser(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		UserPoolId string `json:"UserPoolId"`
		Username   string `json:"Username"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	pool, err := h.reg.Get(req.UserPoolId)
	if err != nil {
		return err
	}
	u, err := pool.GetUser(req.Username)
	if err != nil {
		return err
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, toUserWire(u))
	return nil
}

func (h *Handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		UserPoolId string `json:"UserPoolId"`
		Username   string `json:"Username"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	pool, err := h.reg.Get(req.UserPoolId)
	if err != nil {
		return err
	}
	pool.DeleteUser(req.Username)
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{})
	return nil
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		UserPoolId string `json:"UserPoolId"`
	}
	if err := dispatch.DecodeJSON(r, &req); err != nil {
		return apperr.New(apperr.InvalidArgument, "malformed request body")
	}
	pool, err := h.reg.Get(req.UserPoolId)
	if err != nil {
		return err
	}
	users := pool.ListUsers()
	items := make([]userWire, 0, len(users))
	for _, u := range users {
		items = append(items, toUserWire(u))
	}
	dispatch.WriteJSON(w, contentType, http.StatusOK, map[string]any{"Users": items})
	return nil
}
