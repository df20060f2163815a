package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/baysawarr-web/internal/utils"
	"github.com/jrsteele09/baysawarr-web/users"
	"golang.org/x/crypto/bcrypt"
)

var errUserNotFound = errors.New("user not found")

type account struct {
	user         users.User
	passwordHash string
}

// userRepo is the in-memory account table
type userRepo struct {
	lock     sync.RWMutex
	accounts map[string]*account
	emailIds map[string]string // email to user id
}

func newUserRepo() *userRepo {
	return &userRepo{
		accounts: make(map[string]*account),
		emailIds: make(map[string]string),
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (ur *userRepo) upsert(user users.User, password string) (users.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return users.User{}, err
	}

	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Phone = utils.PtrIfSet(strings.TrimSpace(utils.Value(user.Phone)))
	user.Photo = utils.PtrIfSet(strings.TrimSpace(utils.Value(user.Photo)))
	email := strings.ToLower(user.Email)
	ur.accounts[user.ID] = &account{user: user, passwordHash: hash}
	ur.emailIds[email] = user.ID
	return user, nil
}

func (ur *userRepo) getByEmail(email string) (*account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, errUserNotFound
	}
	return ur.accounts[id], nil
}

func (ur *userRepo) getByID(id string) (*account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	acc, ok := ur.accounts[id]
	if !ok {
		return nil, errUserNotFound
	}
	return acc, nil
}

func (ur *userRepo) list() []users.User {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	out := make([]users.User, 0, len(ur.accounts))
	for _, acc := range ur.accounts {
		out = append(out, acc.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}
