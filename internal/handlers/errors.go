// internal/handlers/errors.go
package handlers

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/i18n"
	"github.com/javajoker/royalty-ledger/internal/services"
	"github.com/javajoker/royalty-ledger/internal/utils"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, chain config.ChainConfig, err error) {
	lang := utils.GetLangFromContext(c)

	var (
		validationErr   *services.ValidationError
		notFoundErr     *services.NotFoundError
		forbiddenErr    *services.ForbiddenError
		preconditionErr *services.PreconditionError
		chainErr        *services.ChainError
		persistenceErr  *services.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		if details := utils.GetValidationErrors(err); len(details) > 0 {
			utils.ValidationErrorResponse(c, details)
			return
		}
		utils.BadRequestResponse(c, validationErr.Error(), gin.H{"field": validationErr.Field})
	case errors.As(err, &notFoundErr):
		utils.NotFoundResponse(c, notFoundErr.Resource)
	case errors.As(err, &forbiddenErr):
		utils.ForbiddenResponse(c, forbiddenErr.Reason)
	case errors.As(err, &preconditionErr):
		utils.ConflictResponse(c, preconditionErr.Reason, nil)
	case errors.As(err, &chainErr):
		utils.ErrorResponse(c, http.StatusBadGateway, "CHAIN_ERROR", i18n.T(lang, i18n.KeyChainTxFailed), gin.H{
			"operation": chainErr.Op,
			"reason":    chainErr.Err.Error(),
		})
	case errors.As(err, &persistenceErr) && persistenceErr.TxHash != "":
		utils.ErrorResponse(c, http.StatusInternalServerError, "RECORD_FAILED", i18n.T(lang, i18n.KeyLedgerRecordFailed), gin.H{
			"operation":    persistenceErr.Op,
			"tx_hash":      persistenceErr.TxHash,
			"explorer_url": chain.ExplorerTxURL(persistenceErr.TxHash),
		})
	default:
		utils.InternalErrorResponse(c, "")
	}
}

func parseIDParam(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.NotFoundResponse(c, resource)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}
