package webhook

import (
	"case-automation/internal/automation"
	pkgLog "case-automation/pkg/log"
)

type Handler struct {
	automationUC automation.UseCase
	security     *SecurityValidator
	l            pkgLog.Logger
}

func NewHandler(
	automationUC automation.UseCase,
	securityConfig SecurityConfig,
	l pkgLog.Logger,
) *Handler {
	return &Handler{
		automationUC: automationUC,
		security:     NewSecurityValidator(securityConfig),
		l:            l,
	}
}
