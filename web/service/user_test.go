package service

import (
	"os"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/xlzd/gotp"

	"recipe-box/database"
	"recipe-box/logger"
)

func setup() {
	logger.InitLogger(logging.DEBUG)
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestCreateUserValidation(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}

	tests := []struct {
		name     string
		username string
		email    string
		password string
		confirm  string
		expected error
	}{
		{"missing username", "", "a@b.com", "secret1", "secret1", ErrFieldsRequired},
		{"missing email", "alice", "", "secret1", "secret1", ErrFieldsRequired},
		{"missing password", "alice", "a@b.com", "", "", ErrFieldsRequired},
		{"mismatch", "alice", "a@b.com", "secret1", "secret2", ErrPasswordMismatch},
		{"too short", "alice", "a@b.com", "five5", "five5", ErrPasswordTooShort},
		{"mismatch checked before length", "alice", "a@b.com", "a", "b", ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateUser(tt.username, tt.email, tt.password, tt.confirm)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	// Nothing may be written when validation fails
	count, err := service.UserCount()
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateUserPasswordLengthInRunes(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}

	// Six two-byte characters pass the six character minimum
	_, err := service.CreateUser("борис", "boris@example.com", "пароль", "пароль")
	assert.NoError(t, err)
}

func TestCreateUserDuplicates(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}

	_, err := service.CreateUser("alice", "alice@example.com", "secret1", "secret1")
	assert.NoError(t, err)

	_, err = service.CreateUser("alice", "other@example.com", "secret1", "secret1")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = service.CreateUser("bob", "alice@example.com", "secret1", "secret1")
	assert.ErrorIs(t, err, ErrEmailTaken)

	count, err := service.UserCount()
	assert.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCheckUser(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}

	created, err := service.CreateUser("alice", "alice@example.com", "secret1", "secret1")
	assert.NoError(t, err)

	// Correct credentials
	user, err := service.CheckUser("alice@example.com", "secret1", "")
	assert.NoError(t, err)
	assert.Equal(t, created.Id, user.Id)
	assert.Equal(t, "alice", user.Username)

	// Wrong password and unknown email must be indistinguishable
	_, wrongPass := service.CheckUser("alice@example.com", "nope123", "")
	_, unknownEmail := service.CheckUser("nobody@example.com", "secret1", "")
	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPass, unknownEmail)
}

func TestTwoFactorFlow(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}

	user, err := service.CreateUser("alice", "alice@example.com", "secret1", "secret1")
	assert.NoError(t, err)

	// Not enrolled yet
	twoFactor, err := service.GetTwoFactor(user.Id)
	assert.NoError(t, err)
	assert.Nil(t, twoFactor)

	twoFactor, err = service.EnableTwoFactor(user.Id)
	assert.NoError(t, err)
	assert.NotEmpty(t, twoFactor.Secret)

	// Enabling twice is rejected
	_, err = service.EnableTwoFactor(user.Id)
	assert.Error(t, err)

	// Login now requires a valid code
	_, err = service.CheckUser("alice@example.com", "secret1", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = service.CheckUser("alice@example.com", "secret1", "000000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	code := gotp.NewDefaultTOTP(twoFactor.Secret).Now()
	logged, err := service.CheckUser("alice@example.com", "secret1", code)
	assert.NoError(t, err)
	assert.Equal(t, user.Id, logged.Id)

	// The provisioning URI carries the enrollment secret
	uri := service.TwoFactorProvisioningURI(user, twoFactor)
	assert.Contains(t, uri, "otpauth://totp/")
	assert.Contains(t, uri, twoFactor.Secret)

	// After disabling, the plain login works again
	assert.NoError(t, service.DisableTwoFactor(user.Id))
	_, err = service.CheckUser("alice@example.com", "secret1", "")
	assert.NoError(t, err)
}
