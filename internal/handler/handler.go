package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/workflow"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	workflow    *workflow.Service
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, svc *workflow.Service, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		workflow:    svc,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.myInfo)
			r.With(h.RequiredRole([]domain.Role{domain.RoleOwner})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleOwner, domain.RoleManager})).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialOwner).With(h.RequiredRole([]domain.Role{domain.RoleOwner})).Patch("/", h.UpdateUser)
			})
		})

		r.Route("/business", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetBusiness)
			r.With(h.RequiredRole([]domain.Role{domain.RoleOwner})).Patch("/", h.UpdateBusiness)
		})

		r.Route("/time-entries", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Post("/", h.CreateTimeEntry)
			r.Get("/", h.ListTimeEntries)
			r.Get("/pending", h.ListPendingTimeEntries)
			r.Get("/summary", h.SummarizeTimeEntries)
			r.Post("/bulk-approve", h.BulkApproveTimeEntries)
			r.Post("/bulk-reject", h.BulkRejectTimeEntries)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetTimeEntry)
				r.Patch("/", h.UpdateTimeEntry)
				r.Post("/submit", h.SubmitTimeEntry)
				r.Post("/approve", h.ApproveTimeEntry)
				r.Post("/reject", h.RejectTimeEntry)
				r.Post("/void", h.VoidTimeEntry)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Post("/", h.CreateShift)
			r.Get("/", h.ListShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetShift)
				r.Patch("/", h.UpdateShift)
				r.Post("/publish", h.PublishShift)
				r.Post("/cancel", h.CancelShift)
				r.Post("/assign", h.AssignShift)
				r.Post("/unassign", h.UnassignShift)
			})
		})
	})
}
