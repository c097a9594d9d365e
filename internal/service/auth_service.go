package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/connectmais/api/internal/auth"
	"github.com/connectmais/api/internal/repo"
	"github.com/connectmais/api/internal/util"
)

var (
	// ErrCredenciaisInvalidas indica falha na autenticação. E-mail
	// desconhecido e senha errada produzem o mesmo erro de propósito.
	ErrCredenciaisInvalidas = errors.New("usuário ou senha inválidos")
	// ErrContaDesativada indica conta desativada.
	ErrContaDesativada = errors.New("usuário desativado")
	// ErrRoleInvalida indica role_code fora do conjunto aceito.
	ErrRoleInvalida = errors.New("role_code inválida")
	// ErrRefreshInvalido indica refresh token inválido ou expirado.
	ErrRefreshInvalido = errors.New("refresh token inválido")
)

type usuarioRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
	InsertUsuario(ctx context.Context, arg repo.InsertUsuarioParams) (repo.Usuario, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de cadastro, autenticação e sessões.
type AuthService struct {
	repo       usuarioRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r usuarioRepository, redisClient redisCommander, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de cadastro e login.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	RefreshExpiry time.Time
	Subject       uuid.UUID
	NomeCompleto  string
	Email         string
	RoleCode      string
}

// Register cadastra usuário novo e abre sessão autenticada.
//
// A consulta prévia por e-mail é só um atalho que evita o custo do bcrypt;
// a garantia contra duplicidade é a constraint de unicidade no insert.
func (s *AuthService) Register(ctx context.Context, nomeCompleto, email, senha, roleCode string) (*LoginResult, error) {
	if !repo.ValidRole(roleCode) {
		return nil, ErrRoleInvalida
	}

	if _, err := s.repo.GetUsuarioByEmail(ctx, email); err == nil {
		return nil, repo.ErrEmailDuplicado
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	if len(senha) > auth.MaxPasswordBytes {
		return nil, auth.ErrSenhaMuitoLonga
	}

	senhaHash, err := auth.Hash(senha)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.InsertUsuario(ctx, repo.InsertUsuarioParams{
		NomeCompleto: nomeCompleto,
		Email:        email,
		SenhaHash:    senhaHash,
		RoleCode:     roleCode,
	})
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// Login autentica usuário por e-mail e senha.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	user, err := s.repo.GetUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrCredenciaisInvalidas
		}
		return nil, err
	}

	if user.SenhaHash == nil {
		log.Warn().Msg("login: usuário sem senha cadastrada")
		return nil, ErrCredenciaisInvalidas
	}

	if !user.Ativo {
		return nil, ErrContaDesativada
	}

	ok, err := auth.Verify(senha, *user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrCredenciaisInvalidas
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrCredenciaisInvalidas
	}

	return s.openSession(ctx, user)
}

// Refresh troca refresh token válido por nova sessão (rotação).
func (s *AuthService) Refresh(ctx context.Context, raw string) (*LoginResult, error) {
	key := auth.RefreshRedisKey(auth.HashRefreshToken(raw))

	subjectStr, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRefreshInvalido
		}
		return nil, err
	}

	subject, err := uuid.Parse(subjectStr)
	if err != nil {
		return nil, ErrRefreshInvalido
	}

	user, err := s.repo.GetUsuarioByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalido
		}
		return nil, err
	}
	if !user.Ativo {
		return nil, ErrContaDesativada
	}

	// Rotação: o token usado deixa de valer antes do novo ser emitido.
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// Logout revoga o refresh token atual. Idempotente.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	key := auth.RefreshRedisKey(auth.HashRefreshToken(raw))
	return s.redis.Del(ctx, key).Err()
}

// GetMe devolve o perfil do usuário autenticado.
func (s *AuthService) GetMe(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	return s.repo.GetUsuarioByID(ctx, id)
}

func (s *AuthService) openSession(ctx context.Context, user repo.Usuario) (*LoginResult, error) {
	token, err := s.jwt.GenerateAccessToken(user.ID.String(), user.RoleCode)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	key := auth.RefreshRedisKey(refreshHash)
	if err := s.redis.Set(ctx, key, user.ID.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		RefreshExpiry: expires,
		Subject:       user.ID,
		NomeCompleto:  user.NomeCompleto,
		Email:         user.Email,
		RoleCode:      user.RoleCode,
	}, nil
}
