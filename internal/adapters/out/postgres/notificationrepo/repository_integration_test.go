package notificationrepo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/notificationrepo"
	"fulfillment/internal/adapters/out/postgres/postgrestest"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"

	"github.com/stretchr/testify/suite"
)

var at = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type NotificationRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *postgrestest.Database
	repository *notificationrepo.GormNotificationRepository
}

func (s *NotificationRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := postgrestest.Start(context.Background())
	s.Require().NoError(err)
	s.database = database
}

func (s *NotificationRepositoryIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.database.Truncate())
	s.repository = notificationrepo.NewGormNotificationRepository(s.database.DB)
}

func (s *NotificationRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.database != nil {
		s.Require().NoError(s.database.Terminate(context.Background()))
	}
}

func (s *NotificationRepositoryIntegrationTestSuite) addMany(n int) []notification.Notification {
	added := make([]notification.Notification, 0, n)
	for i := range n {
		entry, err := notification.NewNotification(kernel.NewUUID(), notification.Info,
			fmt.Sprintf("entry %d", i), at.Add(time.Duration(i)*time.Second))
		s.Require().NoError(err)
		s.Require().NoError(s.repository.Add(context.Background(), entry))
		added = append(added, entry)
	}
	return added
}

func (s *NotificationRepositoryIntegrationTestSuite) TestListRecent_ReturnsNewestOldestFirst() {
	added := s.addMany(5)

	recent, err := s.repository.ListRecent(context.Background(), 3)

	s.Require().NoError(err)
	s.Require().Len(recent, 3)
	for i, n := range recent {
		want := added[i+2]
		s.True(n.ID().IsEqual(want.ID()))
		s.Equal(want.Message(), n.Message())
		s.Equal(notification.Info, n.Type())
		s.True(want.Time().Equal(n.Time()))
	}
}

func (s *NotificationRepositoryIntegrationTestSuite) TestListRecent_NoLimit_ReturnsAll() {
	s.addMany(4)

	all, err := s.repository.ListRecent(context.Background(), 0)

	s.Require().NoError(err)
	s.Len(all, 4)
}

func (s *NotificationRepositoryIntegrationTestSuite) TestClear_RemovesEverything() {
	s.addMany(2)

	s.Require().NoError(s.repository.Clear(context.Background()))

	all, err := s.repository.ListRecent(context.Background(), 0)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *NotificationRepositoryIntegrationTestSuite) TestAdd_Unconstructed_Fails() {
	err := s.repository.Add(context.Background(), notification.Notification{})

	s.Require().ErrorIs(err, notification.ErrNotificationIsNotConstructed)
}

func TestNotificationRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(NotificationRepositoryIntegrationTestSuite))
}
