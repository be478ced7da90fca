package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// SeedStore is the subset of the store the seeder writes through.
// Satisfied by *database.Queries and *docstore.Store.
type SeedStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	ListInventoryItems(ctx context.Context) ([]database.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error)
}

type staffSeed struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
}

type menuSeed struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Category    string          `yaml:"category"`
	ImageURL    string          `yaml:"image_url"`
}

type inventorySeed struct {
	Name              string           `yaml:"name"`
	Unit              string           `yaml:"unit"`
	Stock             decimal.Decimal  `yaml:"stock"`
	LowStockThreshold *decimal.Decimal `yaml:"low_stock_threshold"`
	Supplier          string           `yaml:"supplier"`
}

type seedFile struct {
	Staff     []staffSeed     `yaml:"staff"`
	Menu      []menuSeed      `yaml:"menu"`
	Inventory []inventorySeed `yaml:"inventory"`
}

// Result counts the records Seed created.
type Result struct {
	Staff          int
	MenuItems      int
	InventoryItems int
}

func loadSeedFile(path string) (seedFile, error) {
	var f seedFile
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Seed creates whatever is missing. Staff match on email, menu and
// inventory items on name, so running it twice changes nothing.
func Seed(ctx context.Context, store SeedStore, f seedFile, log *zap.Logger) (Result, error) {
	var res Result

	for _, s := range f.Staff {
		created, err := seedStaff(ctx, store, s, log)
		if err != nil {
			return res, err
		}
		if created {
			res.Staff++
		}
	}

	menu, err := store.ListMenuItems(ctx)
	if err != nil {
		return res, fmt.Errorf("list menu: %w", err)
	}
	existing := make(map[string]bool, len(menu))
	for _, m := range menu {
		existing[strings.ToLower(m.Name)] = true
	}
	for _, m := range f.Menu {
		if existing[strings.ToLower(m.Name)] {
			log.Info("menu item already exists, skipping", zap.String("name", m.Name))
			continue
		}
		if !m.Price.IsPositive() || m.Category == "" {
			return res, fmt.Errorf("menu item %q: price must be positive and category set", m.Name)
		}
		if _, err := store.CreateMenuItem(ctx, database.CreateMenuItemParams{
			Name:        m.Name,
			Description: m.Description,
			Price:       m.Price,
			Category:    m.Category,
			ImageURL:    m.ImageURL,
		}); err != nil {
			return res, fmt.Errorf("create menu item %q: %w", m.Name, err)
		}
		existing[strings.ToLower(m.Name)] = true
		res.MenuItems++
	}

	inv, err := store.ListInventoryItems(ctx)
	if err != nil {
		return res, fmt.Errorf("list inventory: %w", err)
	}
	stocked := make(map[string]bool, len(inv))
	for _, it := range inv {
		stocked[strings.ToLower(it.Name)] = true
	}
	for _, it := range f.Inventory {
		if stocked[strings.ToLower(it.Name)] {
			continue
		}
		if _, err := store.CreateInventoryItem(ctx, database.CreateInventoryItemParams{
			Name:              it.Name,
			Unit:              it.Unit,
			Stock:             it.Stock,
			LowStockThreshold: it.LowStockThreshold,
			Supplier:          it.Supplier,
		}); err != nil {
			return res, fmt.Errorf("create inventory item %q: %w", it.Name, err)
		}
		stocked[strings.ToLower(it.Name)] = true
		res.InventoryItems++
	}

	return res, nil
}

func seedStaff(ctx context.Context, store SeedStore, s staffSeed, log *zap.Logger) (bool, error) {
	role, err := enum.ParseRole(s.Role)
	if err != nil {
		return false, fmt.Errorf("staff %s: %w", s.Email, err)
	}

	_, err = store.GetUserByEmail(ctx, s.Email)
	if err == nil {
		log.Info("user already exists, skipping", zap.String("email", s.Email))
		return false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return false, fmt.Errorf("check user %s: %w", s.Email, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	u, err := store.CreateUser(ctx, database.CreateUserParams{
		Email:          s.Email,
		HashedPassword: string(hashed),
		FullName:       s.FullName,
		Role:           role,
	})
	if err != nil {
		return false, fmt.Errorf("create user %s: %w", s.Email, err)
	}
	log.Info("created user", zap.String("email", s.Email), zap.String("id", u.ID), zap.String("role", string(role)))
	return true, nil
}
