package router

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/imobipro/imobipro-api/app/controllers"
	"github.com/imobipro/imobipro-api/app/repository"
	"github.com/imobipro/imobipro-api/internal/pkg/database"
	"github.com/imobipro/imobipro-api/internal/pkg/env"
	"github.com/imobipro/imobipro-api/internal/pkg/mail"
	"github.com/imobipro/imobipro-api/internal/pkg/mercadopago"
	"github.com/imobipro/imobipro-api/internal/pkg/provision"
	"github.com/imobipro/imobipro-api/internal/pkg/sweeper"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	repos := repository.NewFactory(database.GetDB()).GetRepositories()

	service, err := provision.NewService(
		mercadopago.NewClientFromEnv(),
		repos,
		mail.NewSMTPMailer(),
		provision.Config{
			LoginURL:       env.MustGetEnv("APP_LOGIN_URL"),
			SiteBaseDomain: env.GetEnv("SITE_BASE_DOMAIN", "imobi-pro.com"),
		},
	)
	if err != nil {
		// Misconfiguration is a deploy error; fail at startup, not on the
		// first payment.
		panic(err)
	}

	paymentController := controllers.NewPaymentController(service)
	webhookController := controllers.NewWebhookController(
		service,
		repos.WebhookEvent,
		env.GetEnv("MP_WEBHOOK_SECRET", ""),
	)
	adminController := controllers.NewAdminController(repos.Payment)

	api := app.Group("/api")
	api.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	// The client-facing intent endpoint is rate limited; the webhook
	// endpoint is deliberately not, so the gateway never sees a 429.
	payments := api.Group("/payments", limiter.New(limiter.Config{
		Storage: newLimiterStorage(),
	}))
	payments.Post("/create", paymentController.HandleCreatePayment)

	webhooks := api.Group("/webhooks")
	webhooks.Post("/mercadopago", webhookController.HandleMercadoPagoWebhook)

	admin := api.Group("/admin", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.MustGetEnv("ADMIN_PASSWORD"),
		},
	}))
	admin.Get("/payments/stuck", adminController.HandleListStuckPayments)
	admin.Get("/stats", adminController.HandleStats)

	// Safety net for payments whose webhook retries were exhausted while
	// the backend was down.
	sweeper.NewManager(service, repos.Payment).Start()
}

func newLimiterStorage() fiber.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host: env.GetEnv("CACHE_HOST", "localhost"),
		Port: port,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
