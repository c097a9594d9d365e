package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/connectmais/api/internal/auth"
	"github.com/connectmais/api/internal/repo"
)

type stubUsuarioRepo struct {
	byEmail     map[string]repo.Usuario
	byID        map[uuid.UUID]repo.Usuario
	insertCalls int
	insertErr   error
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{
		byEmail: make(map[string]repo.Usuario),
		byID:    make(map[uuid.UUID]repo.Usuario),
	}
}

func (s *stubUsuarioRepo) add(user repo.Usuario) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUsuarioRepo) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubUsuarioRepo) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubUsuarioRepo) InsertUsuario(ctx context.Context, arg repo.InsertUsuarioParams) (repo.Usuario, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return repo.Usuario{}, s.insertErr
	}
	if _, ok := s.byEmail[arg.Email]; ok {
		// Mesmo comportamento da constraint de unicidade no banco.
		return repo.Usuario{}, repo.ErrEmailDuplicado
	}

	hash := arg.SenhaHash
	now := time.Now().UTC()
	user := repo.Usuario{
		ID:           uuid.New(),
		NomeCompleto: arg.NomeCompleto,
		Email:        arg.Email,
		SenhaHash:    &hash,
		RoleCode:     arg.RoleCode,
		Ativo:        true,
		CriadoEm:     now,
		AtualizadoEm: now,
	}
	s.add(user)
	return user, nil
}

type stubRedis struct {
	store map[string]string
}

func newStubRedis() *stubRedis {
	return &stubRedis{store: make(map[string]string)}
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	s.store[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if val, ok := s.store[key]; ok {
		return redis.NewStringResult(val, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func newTestService(repoStub *stubUsuarioRepo, redisStub *stubRedis) *AuthService {
	jwtMgr := auth.NewJWTManager("segredo-de-teste", 2*time.Hour)
	return NewAuthService(repoStub, redisStub, jwtMgr, 24*time.Hour)
}

func mustHash(t *testing.T, senha string) *string {
	t.Helper()
	digest, err := auth.Hash(senha)
	if err != nil {
		t.Fatalf("hash de fixture: %v", err)
	}
	return &digest
}

func TestRegisterIssuesMatchingToken(t *testing.T) {
	repoStub := newStubUsuarioRepo()
	svc := newTestService(repoStub, newStubRedis())

	result, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", "hr")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if result.RoleCode != "hr" {
		t.Errorf("role_code = %q, esperado hr", result.RoleCode)
	}
	if result.Email != "ana@x.com" {
		t.Errorf("email = %q", result.Email)
	}

	claims, err := svc.JWT().ParseAndValidate(result.AccessToken)
	if err != nil {
		t.Fatalf("token emitido não valida: %v", err)
	}
	if claims.Subject != result.Subject.String() {
		t.Errorf("sub = %q, esperado %q", claims.Subject, result.Subject)
	}
	if claims.Role != "hr" {
		t.Errorf("claim role = %q, esperado hr", claims.Role)
	}
}

func TestRegisterInvalidRole(t *testing.T) {
	repoStub := newStubUsuarioRepo()
	svc := newTestService(repoStub, newStubRedis())

	_, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", "gerente")
	if !errors.Is(err, ErrRoleInvalida) {
		t.Fatalf("erro = %v, esperado ErrRoleInvalida", err)
	}
	if repoStub.insertCalls != 0 {
		t.Error("role inválida não deve chegar ao insert")
	}
}

func TestRegisterDuplicateEmailFastPath(t *testing.T) {
	repoStub := newStubUsuarioRepo()
	repoStub.add(repo.Usuario{ID: uuid.New(), Email: "ana@x.com", RoleCode: "employee", Ativo: true})
	svc := newTestService(repoStub, newStubRedis())

	_, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", "employee")
	if !errors.Is(err, repo.ErrEmailDuplicado) {
		t.Fatalf("erro = %v, esperado ErrEmailDuplicado", err)
	}
	if repoStub.insertCalls != 0 {
		t.Error("atalho deveria evitar o insert")
	}
}

func TestRegisterDuplicateEmailConstraintWins(t *testing.T) {
	// Simula a corrida: a consulta prévia não vê nada, mas o insert
	// esbarra na constraint de unicidade.
	repoStub := newStubUsuarioRepo()
	repoStub.insertErr = repo.ErrEmailDuplicado
	svc := newTestService(repoStub, newStubRedis())

	_, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", "employee")
	if !errors.Is(err, repo.ErrEmailDuplicado) {
		t.Fatalf("erro = %v, esperado ErrEmailDuplicado", err)
	}
	if repoStub.insertCalls != 1 {
		t.Error("insert deveria ter sido tentado")
	}
}

func TestRegisterPasswordTooLong(t *testing.T) {
	repoStub := newStubUsuarioRepo()
	svc := newTestService(repoStub, newStubRedis())

	long := strings.Repeat("a", auth.MaxPasswordBytes+1)
	_, err := svc.Register(context.Background(), "Ana", "ana@x.com", long, "employee")
	if !errors.Is(err, auth.ErrSenhaMuitoLonga) {
		t.Fatalf("erro = %v, esperado ErrSenhaMuitoLonga", err)
	}
	if repoStub.insertCalls != 0 {
		t.Error("senha longa não deve chegar ao hasher nem ao insert")
	}
}

func TestLoginScenarios(t *testing.T) {
	ativo := repo.Usuario{
		ID:           uuid.New(),
		NomeCompleto: "Ana",
		Email:        "ana@x.com",
		SenhaHash:    nil, // preenchido abaixo
		RoleCode:     "hr",
		Ativo:        true,
	}
	ativo.SenhaHash = mustHash(t, "secret123")

	inativo := repo.Usuario{
		ID:        uuid.New(),
		Email:     "saiu@x.com",
		SenhaHash: mustHash(t, "secret123"),
		RoleCode:  "employee",
		Ativo:     false,
	}

	semSenha := repo.Usuario{
		ID:       uuid.New(),
		Email:    "sso@x.com",
		RoleCode: "employee",
		Ativo:    true,
	}

	repoStub := newStubUsuarioRepo()
	repoStub.add(ativo)
	repoStub.add(inativo)
	repoStub.add(semSenha)
	svc := newTestService(repoStub, newStubRedis())

	tests := []struct {
		name    string
		email   string
		senha   string
		wantErr error
	}{
		{"credenciais corretas", "ana@x.com", "secret123", nil},
		{"senha errada", "ana@x.com", "errada", ErrCredenciaisInvalidas},
		{"email desconhecido", "ninguem@x.com", "secret123", ErrCredenciaisInvalidas},
		{"conta desativada", "saiu@x.com", "secret123", ErrContaDesativada},
		{"sem senha cadastrada", "sso@x.com", "secret123", ErrCredenciaisInvalidas},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.Login(context.Background(), tc.email, tc.senha)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("erro = %v, esperado %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if result.Subject != ativo.ID {
				t.Errorf("subject = %v, esperado %v", result.Subject, ativo.ID)
			}

			claims, err := svc.JWT().ParseAndValidate(result.AccessToken)
			if err != nil {
				t.Fatalf("token emitido não valida: %v", err)
			}
			if claims.Role != "hr" {
				t.Errorf("claim role = %q, esperado hr", claims.Role)
			}
		})
	}
}

func TestRegisterThenLoginSameSubject(t *testing.T) {
	repoStub := newStubUsuarioRepo()
	svc := newTestService(repoStub, newStubRedis())

	registered, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", "hr")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	logged, err := svc.Login(context.Background(), "ana@x.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if logged.Subject != registered.Subject {
		t.Errorf("login devolveu subject %v, cadastro %v", logged.Subject, registered.Subject)
	}
	if logged.RoleCode != "hr" {
		t.Errorf("role_code = %q, esperado hr", logged.RoleCode)
	}
}

func TestRefreshRotation(t *testing.T) {
	repoStub := newStubUsuarioRepo()
	redisStub := newStubRedis()
	svc := newTestService(repoStub, redisStub)

	registered, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", "employee")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	renewed, err := svc.Refresh(context.Background(), registered.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if renewed.Subject != registered.Subject {
		t.Errorf("subject mudou na rotação: %v != %v", renewed.Subject, registered.Subject)
	}

	// O token usado foi rotacionado e não vale mais.
	if _, err := svc.Refresh(context.Background(), registered.RefreshToken); !errors.Is(err, ErrRefreshInvalido) {
		t.Errorf("erro = %v, esperado ErrRefreshInvalido", err)
	}

	// O novo segue válido.
	if _, err := svc.Refresh(context.Background(), renewed.RefreshToken); err != nil {
		t.Errorf("refresh rotacionado deveria valer: %v", err)
	}
}

func TestLogoutRevokesRefresh(t *testing.T) {
	repoStub := newStubUsuarioRepo()
	svc := newTestService(repoStub, newStubRedis())

	registered, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", "employee")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Logout(context.Background(), registered.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), registered.RefreshToken); !errors.Is(err, ErrRefreshInvalido) {
		t.Errorf("erro = %v, esperado ErrRefreshInvalido", err)
	}
}

func TestRefreshInactiveUser(t *testing.T) {
	repoStub := newStubUsuarioRepo()
	redisStub := newStubRedis()
	svc := newTestService(repoStub, redisStub)

	registered, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", "employee")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Conta desativada depois da emissão do refresh.
	user := repoStub.byID[registered.Subject]
	user.Ativo = false
	repoStub.add(user)

	if _, err := svc.Refresh(context.Background(), registered.RefreshToken); !errors.Is(err, ErrContaDesativada) {
		t.Errorf("erro = %v, esperado ErrContaDesativada", err)
	}
}
