package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/display"
	"github.com/ferreirogomes/tpf/models"
)

// UserService gerencia o cadastro e o login dos usuários.
type UserService struct {
	Store   UserStore
	KYC     KYCApprover // nil quando o KYC on-chain não está configurado
	IsAdmin func(publicKey string) bool
	Now     func() time.Time
}

func NewUserService(store UserStore, kyc KYCApprover, isAdmin func(string) bool) *UserService {
	return &UserService{Store: store, KYC: kyc, IsAdmin: isAdmin, Now: time.Now}
}

// RegisterRequest é o cadastro de um usuário.
type RegisterRequest struct {
	PublicKey string `json:"publicKey" validate:"required,eth_addr"`
	Name      string `json:"name" validate:"required"`
	Country   int    `json:"country" validate:"required,min=1,max=999"`
	TaxID     string `json:"taxId" validate:"required"`
}

// UserPage é uma página da listagem de usuários.
type UserPage struct {
	Items []models.User `json:"items"`
	Total int           `json:"total"`
}

// Register cria o usuário, definindo o perfil pela lista de administradores e aprovando o KYC
// on-chain quando configurado.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	if _, err := parseAddress("publicKey", req.PublicKey); err != nil {
		return models.User{}, err
	}
	if _, found, err := s.Store.FindByPublicKey(ctx, req.PublicKey); err != nil {
		return models.User{}, err
	} else if found {
		return models.User{}, fmt.Errorf("%w: usuário com a carteira %s", ErrAlreadyExists, req.PublicKey)
	}

	role := models.RoleCommon
	if s.IsAdmin != nil && s.IsAdmin(req.PublicKey) {
		role = models.RoleAdmin
	}

	now := s.Now().UTC()
	user := models.User{
		ID:          uuid.New().String(),
		PublicKey:   req.PublicKey,
		Name:        req.Name,
		Country:     req.Country,
		TaxID:       req.TaxID,
		Role:        role,
		CreatedAt:   now,
		LastLoginAt: now,
	}

	if s.KYC != nil {
		kyc, err := s.KYC.Approve(ctx, req.PublicKey, req.Country)
		if err != nil {
			return models.User{}, fmt.Errorf("falha ao aprovar KYC de %s: %w", req.PublicKey, err)
		}
		user.KYC = &kyc
	}

	created, err := s.Store.Create(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("falha ao salvar usuário: %w", err)
	}
	logrus.WithFields(logrus.Fields{"id": created.ID, "role": created.Role}).Info("usuário cadastrado")
	return created, nil
}

// Login busca o usuário pela carteira e atualiza o último login.
func (s *UserService) Login(ctx context.Context, publicKey string) (models.User, error) {
	user, found, err := s.Store.FindByPublicKey(ctx, publicKey)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, fmt.Errorf("%w: usuário com a carteira %s", ErrNotFound, publicKey)
	}
	return s.Store.TouchLogin(ctx, user.ID, s.Now())
}

// List filtra os usuários por nome, CPF/CNPJ ou carteira e pagina o resultado.
func (s *UserService) List(ctx context.Context, search string, page, rowsPerPage int) (UserPage, error) {
	users, err := s.Store.List(ctx)
	if err != nil {
		return UserPage{}, err
	}
	filtered := make([]models.User, 0, len(users))
	for _, u := range users {
		if display.MatchesAny(search, u.Name, u.TaxID, u.PublicKey) {
			filtered = append(filtered, u)
		}
	}
	return UserPage{Items: display.ApplyPagination(filtered, page, rowsPerPage), Total: len(filtered)}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, found, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, fmt.Errorf("%w: usuário %s", ErrNotFound, id)
	}
	return user, nil
}
