package mocks

import (
	"time"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockJWTGenerator is a mock type for the JWTGenerator type
type MockJWTGenerator struct {
	mock.Mock
}

// GenerateToken provides a mock function with given fields: uid, clientID
func (_m *MockJWTGenerator) GenerateToken(uid, clientID string) (string, time.Time, error) {
	ret := _m.Called(uid, clientID)

	return ret.Get(0).(string), ret.Get(1).(time.Time), ret.Error(2)
}

// ValidateToken provides a mock function with given fields: token
func (_m *MockJWTGenerator) ValidateToken(token string) (*models.SessionClaims, error) {
	ret := _m.Called(token)

	claims, _ := ret.Get(0).(*models.SessionClaims)
	return claims, ret.Error(1)
}
