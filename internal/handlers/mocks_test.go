package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ukydev/taller-finder/internal/events"
	"github.com/ukydev/taller-finder/internal/models"
	"github.com/ukydev/taller-finder/internal/proximity"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockHistoryCollection is a mock implementation of HistoryCollection
type MockHistoryCollection struct {
	mock.Mock
}

func (m *MockHistoryCollection) InsertRecord(ctx context.Context, record models.SearchRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryCollection) FindRecent(ctx context.Context, userID string, limit int64) ([]models.SearchRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchRecord), args.Error(1)
}

// MockProximityService is a mock implementation of ProximityService
type MockProximityService struct {
	mock.Mock
}

func (m *MockProximityService) ResolveReferencePoint(ctx context.Context, mode proximity.Mode, input string) (models.GeoPoint, error) {
	args := m.Called(ctx, mode, input)
	return args.Get(0).(models.GeoPoint), args.Error(1)
}

func (m *MockProximityService) Nearby(ctx context.Context, ref models.GeoPoint, category *models.ServiceCategory) ([]models.PlaceResult, error) {
	args := m.Called(ctx, ref, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlaceResult), args.Error(1)
}

func (m *MockProximityService) Search(ctx context.Context, ref models.GeoPoint, category *models.ServiceCategory) (models.Places, error) {
	args := m.Called(ctx, ref, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Places), args.Error(1)
}

// MockDiagnoser is a mock implementation of Diagnoser
type MockDiagnoser struct {
	mock.Mock
}

func (m *MockDiagnoser) Diagnose(ctx context.Context, req models.DiagnosisRequest) (*models.DiagnosisResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiagnosisResponse), args.Error(1)
}

type recordingPublisher struct {
	events []events.SearchEvent
}

func (p *recordingPublisher) PublishSearch(_ context.Context, event events.SearchEvent) {
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() {}
