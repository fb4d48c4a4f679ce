package csvstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

const (
	productsFile = "products.csv"
	usersFile    = "users.csv"
	statusFile   = "status.csv"
	historyFile  = "status_history.csv"
)

// parseID accepts a blank id so hand-made files without ids still load. load
// writes the assigned id back right away.
func parseID(s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(s)
}

var products = table[models.Product]{
	file:     productsFile,
	header:   []string{"id", "code", "name", "expiry_date", "lot", "quantity", "registered_at", "section"},
	required: []string{"code", "name", "expiry_date", "quantity", "section"},
	blankIDs: true,
	encode: func(p models.Product) []string {
		return []string{
			p.ID.String(), p.Code, p.Name, p.ExpiryDate, p.Lot,
			strconv.Itoa(p.Quantity), formatTime(p.RegisteredAt), p.Section,
		}
	},
	decode: func(r record) (models.Product, error) {
		id, err := parseID(r["id"])
		if err != nil {
			return models.Product{}, fmt.Errorf("column id: %w", err)
		}
		qty, err := r.atoi("quantity")
		if err != nil {
			return models.Product{}, err
		}
		exp, err := expiry.ParseDate(r["expiry_date"])
		if err != nil {
			return models.Product{}, err
		}
		at, err := r.timestamp("registered_at")
		if err != nil {
			return models.Product{}, err
		}
		return models.Product{
			ID:           id,
			Code:         strings.TrimSpace(r["code"]),
			Name:         strings.TrimSpace(r["name"]),
			ExpiryDate:   expiry.FormatDate(exp),
			Lot:          r["lot"],
			Quantity:     qty,
			RegisteredAt: at,
			Section:      strings.TrimSpace(r["section"]),
		}, nil
	},
}

var users = table[models.User]{
	file:     usersFile,
	header:   []string{"id", "username", "password_hash", "section", "created_at"},
	required: []string{"username", "password_hash", "section"},
	blankIDs: true,
	encode: func(u models.User) []string {
		return []string{u.ID.String(), u.Username, u.PasswordHash, u.Section, formatTime(u.CreatedAt)}
	},
	decode: func(r record) (models.User, error) {
		id, err := parseID(r["id"])
		if err != nil {
			return models.User{}, fmt.Errorf("column id: %w", err)
		}
		at, err := r.timestamp("created_at")
		if err != nil {
			return models.User{}, err
		}
		return models.User{
			ID:           id,
			Username:     r["username"],
			PasswordHash: r["password_hash"],
			Section:      r["section"],
			CreatedAt:    at,
		}, nil
	},
}

var statuses = table[models.Status]{
	file:     statusFile,
	header:   []string{"color", "message", "updated_at", "updated_by"},
	required: []string{"color", "message"},
	encode: func(s models.Status) []string {
		return []string{s.Color, s.Message, formatTime(s.UpdatedAt), s.UpdatedBy}
	},
	decode: func(r record) (models.Status, error) {
		at, err := r.timestamp("updated_at")
		if err != nil {
			return models.Status{}, err
		}
		return models.Status{
			ID:        models.StatusRowID,
			Color:     r["color"],
			Message:   r["message"],
			UpdatedAt: at,
			UpdatedBy: r["updated_by"],
		}, nil
	},
}

var history = table[models.StatusEntry]{
	file:     historyFile,
	header:   []string{"id", "color", "message", "created_at", "created_by"},
	required: []string{"id", "color", "message", "created_at"},
	encode: func(e models.StatusEntry) []string {
		return []string{strconv.FormatUint(uint64(e.ID), 10), e.Color, e.Message, formatTime(e.CreatedAt), e.CreatedBy}
	},
	decode: func(r record) (models.StatusEntry, error) {
		id, err := strconv.ParseUint(r["id"], 10, 64)
		if err != nil {
			return models.StatusEntry{}, fmt.Errorf("column id: %w", err)
		}
		at, err := r.timestamp("created_at")
		if err != nil {
			return models.StatusEntry{}, err
		}
		return models.StatusEntry{
			ID:        uint(id),
			Color:     r["color"],
			Message:   r["message"],
			CreatedAt: at,
			CreatedBy: r["created_by"],
		}, nil
	},
}
