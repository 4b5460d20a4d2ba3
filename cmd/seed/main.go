// Command seed creates bootstrap identities from a YAML file. Existing
// emails are skipped so the command can be re-run safely.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	identityrepo "github.com/y0shih/AlertMe-Nest/internal/identity/repository"
	identityservice "github.com/y0shih/AlertMe-Nest/internal/identity/service"
	"github.com/y0shih/AlertMe-Nest/internal/identity/transport"
	"github.com/y0shih/AlertMe-Nest/migrations"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/config"
	"github.com/y0shih/AlertMe-Nest/platform/db"
	"github.com/y0shih/AlertMe-Nest/platform/logger"
	"github.com/y0shih/AlertMe-Nest/platform/validator"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Email      string `yaml:"email"`
	Username   string `yaml:"username"`
	Role       string `yaml:"role"`
	ExternalID string `yaml:"externalId"`
	Phone      string `yaml:"phone"`
}

func main() {
	path := flag.String("file", "seed.yaml", "path to the YAML seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	seed, err := loadSeed(*path)
	if err != nil {
		log.Error("failed to read seed file", "path", *path, "error", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	svc := identityservice.New(identityrepo.New(pool), cfg.GetPhoneDefaultRegion(), log)
	roles, err := roleIDs(ctx, svc)
	if err != nil {
		log.Error("failed to list roles", "error", err)
		os.Exit(1)
	}

	val := validator.New()
	created, skipped := 0, 0
	for _, u := range seed.Users {
		req, err := toCreateRequest(u, roles)
		if err != nil {
			log.Error("invalid seed user", "email", u.Email, "error", err)
			os.Exit(1)
		}
		if err := val.Struct(req); err != nil {
			log.Error("invalid seed user", "email", u.Email, "error", err)
			os.Exit(1)
		}

		user, err := svc.CreateUser(ctx, req)
		if apperr.Is(err, apperr.KindConflict) {
			log.Info("seed user exists, skipping", "email", u.Email)
			skipped++
			continue
		}
		if err != nil {
			log.Error("failed to create seed user", "email", u.Email, "error", err)
			os.Exit(1)
		}
		log.Info("seed user created", "userId", user.ID, "email", u.Email, "role", u.Role)
		created++
	}

	log.Info("seed complete", "created", created, "skipped", skipped)
}

func loadSeed(path string) (seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, err
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return seedFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return seed, nil
}

func roleIDs(ctx context.Context, svc *identityservice.Service) (map[string]string, error) {
	list, err := svc.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list.Roles))
	for _, r := range list.Roles {
		out[r.Name] = r.ID
	}
	return out, nil
}

func toCreateRequest(u seedUser, roles map[string]string) (transport.CreateUserRequest, error) {
	role := strings.ToLower(strings.TrimSpace(u.Role))
	if role == "" {
		role = "user"
	}
	roleID, ok := roles[role]
	if !ok {
		return transport.CreateUserRequest{}, fmt.Errorf("unknown role %q", u.Role)
	}

	req := transport.CreateUserRequest{
		Email:    strings.TrimSpace(u.Email),
		Username: strings.TrimSpace(u.Username),
		RoleID:   roleID,
	}
	if ext := strings.TrimSpace(u.ExternalID); ext != "" {
		req.ExternalID = &ext
	}
	if phone := strings.TrimSpace(u.Phone); phone != "" {
		req.Phone = &phone
	}
	return req, nil
}
