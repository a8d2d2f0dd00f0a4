package records

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

type UserInput struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
}

func (in UserInput) validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return validationf("username is required")
	}
	if in.Role != domain.RoleAdmin && in.Role != domain.RoleDepartmentUser {
		return validationf("role must be %s or %s", domain.RoleAdmin, domain.RoleDepartmentUser)
	}
	if in.Role == domain.RoleDepartmentUser && in.DepartmentID == "" {
		return validationf("department users must belong to a department")
	}
	return nil
}

func (s *Service) CreateUser(actor domain.Actor, in UserInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, validationf("password is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := database.Load[domain.User](s.db, database.Users)
	username := strings.TrimSpace(in.Username)
	if userByUsername(users, username) != nil {
		return nil, validationf("username %s is already taken", username)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           database.NextID(users),
		Username:     username,
		Password:     string(hashed),
		Role:         in.Role,
		DepartmentID: in.DepartmentID,
		CreatedAt:    now(),
	}
	users = append(users, user)
	if err := database.Save(s.db, database.Users, users); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "create", "user", user.ID, user.Username)
	return sanitizeUser(user), nil
}

func (s *Service) UpdateUser(actor domain.Actor, id string, in UserInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := database.Load[domain.User](s.db, database.Users)
	user := findUser(users, id)
	if user == nil {
		return nil, notFoundf("user %s does not exist", id)
	}
	username := strings.TrimSpace(in.Username)
	if existing := userByUsername(users, username); existing != nil && existing.ID != id {
		return nil, validationf("username %s is already taken", username)
	}
	if user.Role == domain.RoleAdmin && in.Role != domain.RoleAdmin && countAdmins(users) == 1 {
		return nil, validationf("cannot demote the last admin")
	}
	user.Username = username
	user.Role = in.Role
	user.DepartmentID = in.DepartmentID
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}
	user.UpdatedAt = now()
	if err := database.Save(s.db, database.Users, users); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "update", "user", user.ID, user.Username)
	return sanitizeUser(user), nil
}

// DeleteUser removes an account, renumbers the collection and cascades the
// mapping into the history log. Default accounts and the last remaining
// admin are protected.
func (s *Service) DeleteUser(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteUsersLocked(actor, []string{id})
}

func (s *Service) deleteUsersLocked(actor domain.Actor, ids []string) error {
	users := database.Load[domain.User](s.db, database.Users)
	protected := protectedFor(database.Users)

	doomed := make(map[string]bool, len(ids))
	names := make([]string, len(ids))
	admins := countAdmins(users)
	for i, id := range ids {
		if protected[id] {
			return validationf("default account %s cannot be deleted", id)
		}
		if doomed[id] {
			return validationf("user %s listed more than once", id)
		}
		user := findUser(users, id)
		if user == nil {
			return notFoundf("user %s does not exist", id)
		}
		if user.Role == domain.RoleAdmin {
			admins--
		}
		doomed[id] = true
		names[i] = user.Username
	}
	if admins <= 0 {
		return validationf("cannot delete the last admin")
	}

	kept := users[:0]
	for _, u := range users {
		if !doomed[u.ID] {
			kept = append(kept, u)
		}
	}
	if err := database.Save(s.db, database.Users, kept); err != nil {
		return err
	}

	mapping := database.Renumber(kept, protected)
	if err := database.Save(s.db, database.Users, kept); err != nil {
		return err
	}
	s.cascadeUserIDs(mapping)

	for i, id := range ids {
		s.appendHistory(actor, "delete", "user", id, names[i])
	}
	return nil
}

// Authenticate verifies credentials and returns the matching user without
// its password hash.
func (s *Service) Authenticate(username, password string) (*domain.User, error) {
	users := database.Load[domain.User](s.db, database.Users)
	user := userByUsername(users, strings.TrimSpace(username))
	if user == nil {
		return nil, validationf("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, validationf("invalid credentials")
	}
	return sanitizeUser(user), nil
}

func (s *Service) ListUsers() []*domain.User {
	users := database.Load[domain.User](s.db, database.Users)
	out := make([]*domain.User, len(users))
	for i, u := range users {
		out[i] = sanitizeUser(u)
	}
	return out
}

func (s *Service) GetUser(id string) (*domain.User, error) {
	user := findUser(database.Load[domain.User](s.db, database.Users), id)
	if user == nil {
		return nil, notFoundf("user %s does not exist", id)
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(u *domain.User) *domain.User {
	clean := *u
	clean.Password = ""
	return &clean
}

func findUser(users []*domain.User, id string) *domain.User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func userByUsername(users []*domain.User, username string) *domain.User {
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u
		}
	}
	return nil
}

func countAdmins(users []*domain.User) int {
	n := 0
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			n++
		}
	}
	return n
}
