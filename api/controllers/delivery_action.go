package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ordena-app/ordena-backend/api/responses"
	"github.com/ordena-app/ordena-backend/api/validators"
	"github.com/ordena-app/ordena-backend/internal/actions"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	pkgerrors "github.com/ordena-app/ordena-backend/pkg/errors"
	"github.com/ordena-app/ordena-backend/pkg/logger"
)

type deliveryActionQuery struct {
	Action string `json:"action" validate:"required,oneof=confirm discard"`
	Token  string `json:"token" validate:"required"`
}

// DeliveryAction handles the links embedded in courier assignment mail. The
// token is the only credential: whoever holds the link can act on the order.
// On success the courier's browser is redirected to the dashboard result page.
func DeliveryAction(svc *actions.Service, tokens *actions.Codec, dashboardURL string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		query := deliveryActionQuery{
			Action: strings.TrimSpace(r.URL.Query().Get("action")),
			Token:  strings.TrimSpace(r.URL.Query().Get("token")),
		}
		if err := validators.ValidateStruct(&query); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID, tokenAction, err := tokens.Decode(query.Token)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if string(tokenAction) != query.Action {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "action does not match token"))
			return
		}

		order, err := svc.Apply(ctx, orderID, enums.CourierAction(query.Action))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		target := fmt.Sprintf("%s?result=%s&order=%s", dashboardURL, query.Action, order.ShortID())
		http.Redirect(w, r, target, http.StatusFound)
	}
}
