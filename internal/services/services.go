package services

import (
	"log/slog"

	"yamdb/proj/internal/config"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/mails"
	"yamdb/proj/internal/services/auth"
	"yamdb/proj/internal/services/catalog"
	"yamdb/proj/internal/services/reviews"
	"yamdb/proj/internal/services/titles"
	"yamdb/proj/internal/services/users"
	"yamdb/proj/internal/storage/postgres"
	storageModels "yamdb/proj/internal/storage/postgres/models"
)

type Services struct {
	Auth       *auth.AuthService
	Users      *users.UserService
	Categories *catalog.Service[models.Category]
	Genres     *catalog.Service[models.Genre]
	Titles     *titles.TitleService
	Reviews    *reviews.ReviewService
}

func newMailer(cfg *config.Config) auth.MailProvider {
	if cfg.SMTPServer.ApiToken != "" {
		return mails.NewApiMailer(
			cfg.SMTPServer.ApiURL,
			cfg.SMTPServer.ApiToken,
			cfg.SMTPServer.Sender,
			cfg.SMTPServer.Timeout,
		)
	}
	return mails.New(
		cfg.SMTPServer.Host,
		cfg.SMTPServer.Port,
		cfg.SMTPServer.Timeout,
		cfg.SMTPServer.Username,
		cfg.SMTPServer.Password,
		cfg.SMTPServer.Sender,
	)
}

func New(log *slog.Logger, cfg *config.Config, storage *postgres.PostgresDB, taskExecutor auth.TaskExecutor) *Services {
	m := storageModels.New(storage)
	return &Services{
		Auth: auth.New(log, auth.Config{
			Secret:         cfg.Auth.AppSecret,
			AccessTokenTTL: cfg.Auth.AccessTokenTTL,
			CodeTTL:        cfg.Auth.ConfirmationCodeTTL,
			CodeLength:     cfg.Auth.ConfirmationCodeLength,
			AsyncMail:      cfg.Mailer.Async,
		}, m.Users, newMailer(cfg), taskExecutor),
		Users:      users.New(log, m.Users),
		Categories: catalog.New[models.Category](log, "category", m.Categories),
		Genres:     catalog.New[models.Genre](log, "genre", m.Genres),
		Titles:     titles.New(log, m.Titles, m.Categories, m.Genres, cfg.Titles.MinYear),
		Reviews:    reviews.New(log, m.Reviews, m.Comments, m.Titles),
	}
}
