package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/proxygate/accounts/internal/api/metrics"
	"github.com/proxygate/accounts/internal/core/domain"
	"github.com/proxygate/accounts/internal/core/ports"
)

type AccountHandler struct {
	service ports.AccountService
	log     zerolog.Logger
}

func NewAccountHandler(service ports.AccountService, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{service: service, log: log}
}

// errorReason buckets a failed write for the account_errors_total metric.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrUniquenessConflict):
		return "conflict"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

func recordFailure(err error) error {
	metrics.AccountErrorsTotal.WithLabelValues(errorReason(err)).Inc()
	return err
}

// Create registers a new proxy user. New accounts start unapproved.
//
// @Summary      Register an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	account, err := h.service.Create(c.Request().Context(), toNewAccountInput(req))
	if err != nil {
		return recordFailure(err)
	}

	metrics.AccountsSavedTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// List returns accounts filtered by approval state.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BasicAuth
// @Param        status  query     string  false  "all, approved or pending"  Enums(all, approved, pending)
// @Success      200     {object}  listAccountsResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	var q listAccountsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var (
		accounts []*domain.Account
		err      error
	)
	switch domain.ApprovalState(q.Status) {
	case domain.ApprovalApproved:
		accounts, err = h.service.ListApprovedUsers(ctx)
	case domain.ApprovalPending:
		accounts, err = h.service.ListPendingUsers(ctx)
	default:
		accounts, err = h.service.ListAllUsers(ctx)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(accounts))
}

// Get returns one account.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BasicAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  accountResponse
// @Failure      404       {object}  errorResponse
// @Router       /accounts/{username} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	account, err := h.service.FindUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Update applies a partial update. Supplying a password rotates the credential.
//
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        username  path      string                true  "Username"
// @Param        body      body      updateAccountRequest  true  "Fields to change"
// @Success      200       {object}  accountResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Router       /accounts/{username} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	account, err := h.service.Update(c.Request().Context(), c.Param("username"), toPatch(req))
	if err != nil {
		return recordFailure(err)
	}

	metrics.AccountsSavedTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Approve marks a pending account approved.
//
// @Summary      Approve an account
// @Tags         accounts
// @Produce      json
// @Security     BasicAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  accountResponse
// @Failure      404       {object}  errorResponse
// @Router       /accounts/{username}/approve [post]
func (h *AccountHandler) Approve(c echo.Context) error {
	actor, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	account, err := h.service.Approve(c.Request().Context(), c.Param("username"))
	if err != nil {
		return recordFailure(err)
	}

	metrics.AccountsSavedTotal.WithLabelValues("approve").Inc()
	h.log.Info().Str("username", account.Username).Str("by", actor).Msg("account approved")
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Delete removes an account. Admins cannot delete themselves.
//
// @Summary      Delete an account
// @Tags         accounts
// @Security     BasicAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /accounts/{username} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	actor, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	username := c.Param("username")
	if username == actor {
		return c.JSON(http.StatusConflict, errorResponse{Error: "cannot delete the authenticated account"})
	}

	if err := h.service.Delete(c.Request().Context(), username); err != nil {
		return recordFailure(err)
	}

	metrics.AccountsDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
