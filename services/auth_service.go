package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/google/uuid"
)

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	// Authenticate returns the user for valid credentials and ErrInvalidCredentials otherwise.
	// It costs the same whether or not the name exists.
	Authenticate(ctx context.Context, name, password string) (*models.User, error)
	UserFromToken(ctx context.Context, token string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) (*models.User, error)
	CreateAdmin(ctx context.Context, password string) (*models.User, error)
}

type SignupInput struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type LoginInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type AuthResult struct {
	User  *models.User
	Token string
}

type authService struct {
	txr           repositories.Transactor
	userRepo      repositories.UserRepository
	structureRepo repositories.StructureRepository
	matchRepo     repositories.MatchRepository
	betRepo       repositories.BetRepository
	positionRepo  repositories.GroupPositionRepository
	tokens        TokenService
	scoreBoard    ScoreBoardCache
}

func NewAuthService(
	txr repositories.Transactor,
	userRepo repositories.UserRepository,
	structureRepo repositories.StructureRepository,
	matchRepo repositories.MatchRepository,
	betRepo repositories.BetRepository,
	positionRepo repositories.GroupPositionRepository,
	tokens TokenService,
	scoreBoard ScoreBoardCache,
) AuthService {
	return &authService{
		txr:           txr,
		userRepo:      userRepo,
		structureRepo: structureRepo,
		matchRepo:     matchRepo,
		betRepo:       betRepo,
		positionRepo:  positionRepo,
		tokens:        tokens,
		scoreBoard:    scoreBoard,
	}
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	user, err := s.signup(ctx, input)
	if err != nil {
		return nil, err
	}

	// Новый игрок должен появиться в таблице лидеров с нулём очков.
	if err := s.scoreBoard.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate score board cache", slog.Any("error", err))
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("signed up", slog.String("user", user.Name))
	return &AuthResult{User: user, Token: token}, nil
}

// signup creates the user and materialises one match and bet per match reference,
// plus one zeroed group position per team of every score bet group.
func (s *authService) signup(ctx context.Context, input SignupInput) (*models.User, error) {
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:      input.Name,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  hash,
	}

	err = s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		if err := s.userRepo.Create(ctx, exec, user); err != nil {
			if errors.Is(err, repositories.ErrUserNameConflict) {
				return fmt.Errorf("%w: %s", ErrNameAlreadyExists, input.Name)
			}
			return err
		}
		return s.materialize(ctx, exec, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

type groupTeam struct {
	groupID uuid.UUID
	teamID  uuid.UUID
}

func (s *authService) materialize(ctx context.Context, exec repositories.SQLExecutor, userID uuid.UUID) error {
	refs, err := s.structureRepo.ListMatchReferences(ctx, exec)
	if err != nil {
		return fmt.Errorf("failed to load match references: %w", err)
	}

	seen := make(map[groupTeam]bool)
	positions := make([]groupTeam, 0)
	addPosition := func(groupID uuid.UUID, teamID *uuid.UUID) {
		if teamID == nil {
			return
		}
		key := groupTeam{groupID: groupID, teamID: *teamID}
		if !seen[key] {
			seen[key] = true
			positions = append(positions, key)
		}
	}

	for _, ref := range refs {
		match := &models.Match{
			GroupID: ref.GroupID,
			Index:   ref.Index,
			Team1ID: ref.Team1ID,
			Team2ID: ref.Team2ID,
			UserID:  userID,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to create match from reference %s: %w", ref.ID, err)
		}

		switch ref.BetKind {
		case models.BetKindScore:
			if err := s.betRepo.CreateScoreBet(ctx, exec, &models.ScoreBet{MatchID: match.ID}); err != nil {
				return fmt.Errorf("failed to create score bet: %w", err)
			}
			addPosition(ref.GroupID, ref.Team1ID)
			addPosition(ref.GroupID, ref.Team2ID)
		case models.BetKindBinary:
			if err := s.betRepo.CreateBinaryBet(ctx, exec, &models.BinaryBet{MatchID: match.ID}); err != nil {
				return fmt.Errorf("failed to create binary bet: %w", err)
			}
		default:
			return fmt.Errorf("unknown bet kind %q on match reference %s", ref.BetKind, ref.ID)
		}
	}

	for _, p := range positions {
		position := &models.GroupPosition{UserID: userID, GroupID: p.groupID, TeamID: p.teamID}
		if err := s.positionRepo.Create(ctx, exec, position); err != nil {
			return fmt.Errorf("failed to create group position: %w", err)
		}
	}
	return nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.Authenticate(ctx, input.Name, input.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("logged in", slog.String("user", user.Name))
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) Authenticate(ctx context.Context, name, password string) (*models.User, error) {
	user, err := s.userRepo.GetByName(ctx, nil, name)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			verifyDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}

	ok, err := VerifyPassword(user.Password, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password of %s: %w", name, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) (*models.User, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, nil, id, hash); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.Info("password changed", slog.String("user", user.Name))
	return user, nil
}

func (s *authService) CreateAdmin(ctx context.Context, password string) (*models.User, error) {
	return s.signup(ctx, SignupInput{
		Name:      models.AdminName,
		FirstName: models.AdminName,
		LastName:  models.AdminName,
		Password:  password,
	})
}
