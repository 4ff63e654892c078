package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tabiplan/internal/models/db_models"
	"tabiplan/internal/models/request_models"
	"tabiplan/internal/repositories"
	"tabiplan/pkg/utils"
)

type AccountServiceInterface interface {
	Login(request request_models.LoginRequest, ctx context.Context) (string, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	logger      *zap.Logger
}

func NewAccountService(accountRepo repositories.AccountRepository, logger *zap.Logger) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (a *AccountService) Login(request request_models.LoginRequest, ctx context.Context) (string, error) {

	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return "", utils.ErrDatabaseError
	}

	if account == nil {
		return "", utils.ErrAccountNotFound
	}

	err = utils.ComparePasswords(account.PasswordHash, request.Password)
	if err != nil {
		return "", utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(account.ID, account.Role)
	if err != nil {
		return "", utils.ErrInvalidCredentials
	}

	a.logger.Debug("login completed",
		zap.String("account_id", account.ID.String()),
		zap.Duration("took", time.Since(startTime)))

	return token, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) error {

	existingAccount, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return utils.ErrDatabaseError
	}

	newAccount := &db_models.Account{
		DisplayName:  request.DisplayName,
		Email:        request.Email,
		PasswordHash: hashedPassword,
		Role:         "user", // default role
	}

	if err := a.accountRepo.InsertTx(newAccount, ctx); err != nil {
		return utils.ErrDatabaseError
	}

	return nil
}
