// Package handlers contains the thin HTTP layer: payload parsing, principal
// extraction and DTO mapping. All business rules live in the service layer.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecoeats/internal/auth"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}

func partnerScope(c *fiber.Ctx) (partnerID, actorID string, err error) {
	p, err := principal(c)
	if err != nil {
		return "", "", err
	}
	id, ok := p.PartnerID()
	if !ok {
		return "", "", apperrors.NewForbidden("partner affiliation required")
	}
	return id, p.User.ID, nil
}
