package handlers

import (
	"errors"

	"resguard/internal/config"
	"resguard/internal/middleware"
	"resguard/internal/repositories"
	"resguard/internal/repositories/cache"
	"resguard/internal/services/guarantee"
	"resguard/internal/services/stripeaccount"
	"resguard/internal/utils/response"
	"resguard/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ConfigHandler serves the merchant guarantee configuration, the connected
// account endpoints and the public widget status.
type ConfigHandler struct {
	configs    *repositories.GuaranteeConfigRepository
	accounts   *stripeaccount.Service
	guarantees *guarantee.Service
	cache      *cache.Service
	log        *logrus.Logger
}

func NewConfigHandler(
	configs *repositories.GuaranteeConfigRepository,
	accounts *stripeaccount.Service,
	guarantees *guarantee.Service,
	cacheSvc *cache.Service,
	log *logrus.Logger,
) *ConfigHandler {
	return &ConfigHandler{
		configs:    configs,
		accounts:   accounts,
		guarantees: guarantees,
		cache:      cacheSvc,
		log:        log,
	}
}

// PublicStatus is the widget endpoint: availability plus the non-sensitive
// parts of the config, cached per agent id.
func (h *ConfigHandler) PublicStatus(c *fiber.Ctx) error {
	agentID := c.Params("agentId")

	var cached guarantee.PublicStatusView
	if hit, err := h.cache.Get(c.Context(), cache.AgentStatusKey(agentID), &cached); err == nil && hit {
		return c.JSON(cached)
	}

	view, err := h.guarantees.PublicStatus(c.Context(), agentID)
	if err != nil {
		if errors.Is(err, guarantee.ErrSessionNotFound) {
			return response.NotFound(c, "unknown agent")
		}
		return response.ServerError(c, "failed to load guarantee status")
	}

	if err := h.cache.Set(c.Context(), cache.AgentStatusKey(agentID), view); err != nil {
		h.log.WithField("module", "handlers").Warnf("failed to cache status for agent %s: %v", agentID, err)
	}
	return c.JSON(view)
}

func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	cfg, err := h.configs.GetByMerchantID(c.Context(), merchant.ID)
	if err != nil {
		return response.ServerError(c, "failed to load guarantee config")
	}
	return c.JSON(cfg)
}

type updateConfigInput struct {
	Enabled                bool   `json:"enabled"`
	PenaltyAmount          int64  `json:"penalty_amount" validate:"min=0"`
	Currency               string `json:"currency" validate:"omitempty,len=3"`
	CancellationDelayHours int    `json:"cancellation_delay_hours" validate:"min=0"`
	ApplyToRule            string `json:"apply_to_rule" validate:"omitempty,oneof=all min_persons weekend"`
	MinPersons             int    `json:"min_persons" validate:"min=0"`

	DisplayName  string `json:"display_name"`
	LogoURL      string `json:"logo_url" validate:"omitempty,url"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`

	AutoSendEmailOnCreate     bool `json:"auto_send_email_on_create"`
	AutoSendSMSOnCreate       bool `json:"auto_send_sms_on_create"`
	AutoSendEmailOnValidation bool `json:"auto_send_email_on_validation"`
	AutoSendSMSOnValidation   bool `json:"auto_send_sms_on_validation"`
	SMSEnabled                bool `json:"sms_enabled"`
}

// UpdateConfig overwrites the merchant's settings. Switching the guarantee
// on requires a charge-capable connected account; the invariant is checked
// here so the stored config never claims an availability it cannot honor.
func (h *ConfigHandler) UpdateConfig(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input updateConfigInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if errs := validation.Struct(input); errs != nil {
		return response.ValidationError(c, errs)
	}

	cfg, err := h.configs.GetByMerchantID(c.Context(), merchant.ID)
	if err != nil {
		return response.ServerError(c, "failed to load guarantee config")
	}

	if input.Enabled {
		status, err := h.accounts.Status(c.Context(), merchant.ID)
		if err != nil {
			return response.ServerError(c, "failed to verify payment account")
		}
		if !status.Connected || !status.ChargeCapable() {
			return response.BadRequest(c, "connect a charge-capable payment account before enabling the guarantee")
		}
	}

	cfg.Enabled = input.Enabled
	cfg.PenaltyAmount = input.PenaltyAmount
	if input.Currency != "" {
		cfg.Currency = input.Currency
	}
	cfg.CancellationDelayHours = input.CancellationDelayHours
	if input.ApplyToRule != "" {
		cfg.ApplyToRule = input.ApplyToRule
	}
	cfg.MinPersons = input.MinPersons
	cfg.DisplayName = input.DisplayName
	cfg.LogoURL = input.LogoURL
	cfg.ContactEmail = input.ContactEmail
	cfg.ContactPhone = input.ContactPhone
	cfg.Address = input.Address
	cfg.AutoSendEmailOnCreate = input.AutoSendEmailOnCreate
	cfg.AutoSendSMSOnCreate = input.AutoSendSMSOnCreate
	cfg.AutoSendEmailOnValidation = input.AutoSendEmailOnValidation
	cfg.AutoSendSMSOnValidation = input.AutoSendSMSOnValidation
	cfg.SMSEnabled = input.SMSEnabled

	if err := h.configs.Save(c.Context(), cfg); err != nil {
		return response.ServerError(c, "failed to save guarantee config")
	}
	h.invalidateStatus(c, merchant.AgentID)

	return response.Success(c, "Configuration updated", cfg)
}

// ConnectStripe starts or resumes connected-account onboarding.
func (h *ConfigHandler) ConnectStripe(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	result, err := h.accounts.Connect(c.Context(), merchant)
	if err != nil {
		return response.ServerError(c, "failed to start account onboarding")
	}
	h.invalidateStatus(c, merchant.AgentID)
	return c.JSON(result)
}

// StripeStatus probes the connected account's capabilities.
func (h *ConfigHandler) StripeStatus(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	status, err := h.accounts.Status(c.Context(), merchant.ID)
	if err != nil {
		return response.ServerError(c, "failed to check account status")
	}
	return c.JSON(status)
}

// DisconnectStripe removes the connected account and force-disables the
// guarantee.
func (h *ConfigHandler) DisconnectStripe(c *fiber.Ctx) error {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		return response.Unauthorized(c)
	}
	if err := h.accounts.Disconnect(c.Context(), merchant.ID); err != nil {
		return response.ServerError(c, "failed to disconnect account")
	}
	h.invalidateStatus(c, merchant.AgentID)
	return response.Success(c, "Account disconnected", nil)
}

func (h *ConfigHandler) invalidateStatus(c *fiber.Ctx, agentID string) {
	if err := h.cache.Delete(c.Context(), cache.AgentStatusKey(agentID)); err != nil {
		config.LogError(h.log, "handlers", "invalidateStatus", "status cache", agentID, err)
	}
}
