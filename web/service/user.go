package service

import (
	"errors"
	"unicode/utf8"

	"github.com/xlzd/gotp"
	"gorm.io/gorm"

	"recipe-box/config"
	"recipe-box/database"
	"recipe-box/database/model"
	"recipe-box/logger"
	"recipe-box/util/crypto"
)

// minPasswordLen is the minimum password length in characters, not bytes.
const minPasswordLen = 6

// Registration failures callers are expected to distinguish.
var (
	ErrFieldsRequired   = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrEmailTaken       = errors.New("email is already registered")
)

// ErrInvalidCredentials covers every way a login can be rejected, so a
// response never reveals whether the email exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct{}

// CreateUser validates the registration form and inserts a new user. The
// checks run in a fixed order and nothing is written unless all of them pass.
func (s *UserService) CreateUser(username string, email string, password string, confirm string) (*model.User, error) {
	if username == "" || email == "" || password == "" || confirm == "" {
		return nil, ErrFieldsRequired
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}

	db := database.GetDB()

	taken, err := s.usernameExists(db, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.emailExists(db, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := db.Create(user).Error; err != nil {
		// A concurrent registration can slip past the checks above; map the
		// unique index violation back to the field that lost the race.
		if taken, terr := s.usernameExists(db, username); terr == nil && taken {
			return nil, ErrUsernameTaken
		}
		if taken, terr := s.emailExists(db, email); terr == nil && taken {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// CheckUser verifies a login attempt by email, password and, when the user
// enrolled one, a TOTP code. Unknown emails still burn a bcrypt comparison so
// the timing matches a wrong password.
func (s *UserService) CheckUser(email string, password string, twoFactorCode string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("email = ?", email).
		First(user).
		Error
	if err == gorm.ErrRecordNotFound {
		crypto.DummyCompare(password)
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	twoFactor, err := s.GetTwoFactor(user.Id)
	if err != nil {
		return nil, err
	}
	if twoFactor != nil {
		if gotp.NewDefaultTOTP(twoFactor.Secret).Now() != twoFactorCode {
			return nil, ErrInvalidCredentials
		}
	}

	return user, nil
}

func (s *UserService) GetUserByID(id int) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UserCount() (int64, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).Count(&count).Error
	return count, err
}

// GetTwoFactor returns the user's TOTP enrollment, or nil when 2FA is not
// enabled for the account.
func (s *UserService) GetTwoFactor(userId int) (*model.TwoFactor, error) {
	db := database.GetDB()

	twoFactor := &model.TwoFactor{}
	err := db.Model(model.TwoFactor{}).
		Where("user_id = ?", userId).
		First(twoFactor).
		Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return twoFactor, nil
}

// EnableTwoFactor generates and stores a fresh TOTP secret for the user.
func (s *UserService) EnableTwoFactor(userId int) (*model.TwoFactor, error) {
	existing, err := s.GetTwoFactor(userId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("two-factor authentication is already enabled")
	}

	db := database.GetDB()
	twoFactor := &model.TwoFactor{
		UserId: userId,
		Secret: gotp.RandomSecret(32),
	}
	if err := db.Create(twoFactor).Error; err != nil {
		return nil, err
	}
	logger.Infof("two-factor authentication enabled for user %d", userId)
	return twoFactor, nil
}

func (s *UserService) DisableTwoFactor(userId int) error {
	db := database.GetDB()
	err := db.Where("user_id = ?", userId).Delete(model.TwoFactor{}).Error
	if err != nil {
		return err
	}
	logger.Infof("two-factor authentication disabled for user %d", userId)
	return nil
}

// TwoFactorProvisioningURI builds the otpauth URI an authenticator app can
// enroll from.
func (s *UserService) TwoFactorProvisioningURI(user *model.User, twoFactor *model.TwoFactor) string {
	return gotp.NewDefaultTOTP(twoFactor.Secret).ProvisioningUri(user.Email, config.GetName())
}

func (s *UserService) usernameExists(db *gorm.DB, username string) (bool, error) {
	var count int64
	err := db.Model(model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (s *UserService) emailExists(db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.Model(model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
