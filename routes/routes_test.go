package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/zsmartex/powermatch/controllers"
	"github.com/zsmartex/powermatch/controllers/entities"
	"github.com/zsmartex/powermatch/controllers/helpers"
	"github.com/zsmartex/powermatch/models"
	"github.com/zsmartex/powermatch/repository"
	"github.com/zsmartex/powermatch/types"
	"github.com/zsmartex/powermatch/workers"
	"github.com/zsmartex/powermatch/workers/engines"
)

type nopWorker struct{}

func (nopWorker) Process([]byte) error { return nil }

type RoutesTestSuite struct {
	suite.Suite
	repo  *repository.MemoryRepository
	queue *workers.Queue
}

func (s *RoutesTestSuite) SetupTest() {
	s.repo = repository.NewMemoryRepository()
	s.queue = workers.NewQueue()
	s.queue.Register(engines.MatchingJobKind, nopWorker{})
}

func (s *RoutesTestSuite) request(method, target, body string) (*http.Response, []byte) {
	app := SetupRouter(controllers.NewMatchingController(s.queue, s.repo))

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	return resp, buf
}

func (s *RoutesTestSuite) TestCreatePower() {
	resp, body := s.request("POST", "/api/v2/matching/powers",
		`{"member_id":7,"status_type":"SILVER","power_position":"LEFT","power_count":2,"power_type":"ROOT"}`)
	s.Equal(202, resp.StatusCode)

	var job entities.Job
	s.Require().NoError(json.Unmarshal(body, &job))
	s.NotEmpty(job.ID)
	s.Equal(engines.MatchingJobKind, job.Kind)
	s.Equal(1, s.queue.Len())
}

func (s *RoutesTestSuite) TestCreatePowerRejectsInvalidInput() {
	resp, body := s.request("POST", "/api/v2/matching/powers",
		`{"member_id":7,"status_type":"PLATINUM","power_position":"TOP","power_count":0,"power_type":"SELF"}`)
	s.Equal(422, resp.StatusCode)

	var errs helpers.Errors
	s.Require().NoError(json.Unmarshal(body, &errs))
	s.NotEmpty(errs.Errors)

	resp, _ = s.request("POST", "/api/v2/matching/powers", `{"member_id":`)
	s.Equal(400, resp.StatusCode)

	s.Equal(0, s.queue.Len())
}

func (s *RoutesTestSuite) TestCreatePurchase() {
	resp, _ := s.request("POST", "/api/v2/matching/purchases", `{"member_id":7,"status_type":"ASSOCIATE","power_count":1}`)
	s.Equal(202, resp.StatusCode)

	resp, _ = s.request("POST", "/api/v2/matching/purchases", `{"member_id":7,"status_type":"ASSOCIATE"}`)
	s.Equal(422, resp.StatusCode)

	s.Equal(1, s.queue.Len())
}

func (s *RoutesTestSuite) TestCreatePowerOnStoppedQueue() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.queue.Run(ctx)

	resp, _ := s.request("POST", "/api/v2/matching/powers",
		`{"member_id":7,"status_type":"SILVER","power_position":"LEFT","power_count":2,"power_type":"SELF"}`)
	s.Equal(503, resp.StatusCode)
}

func (s *RoutesTestSuite) TestGetPowers() {
	ctx := context.Background()
	s.repo.AddMember(&models.Member{ID: 1, UID: "PM00001", Username: "alice", PositionToParent: types.PositionTop})
	s.repo.AddMember(&models.Member{ID: 2, UID: "PM00002", Username: "bob", PositionToParent: types.PositionLeft})

	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, power := range []*models.VirtualPower{
		{MemberID: 1, StatusType: types.TierSilver, PowerPosition: types.PositionLeft, PowerType: types.PowerRoot, PowerCount: 5},
		{MemberID: 2, StatusType: types.TierGold, PowerPosition: types.PositionRight, PowerType: types.PowerSelf, PowerCount: 1},
		{MemberID: 1, StatusType: types.TierAssociate, PowerPosition: types.PositionRight, PowerType: types.PowerPurchase, PowerCount: 2},
	} {
		power.CreatedAt = created.Add(time.Duration(i) * time.Hour)
		s.Require().NoError(s.repo.CreateVirtualPower(ctx, power))
	}

	resp, body := s.request("GET", "/api/v2/matching/powers?username=ALI&order_by=power_count&order=asc", "")
	s.Equal(200, resp.StatusCode)
	s.Equal("2", resp.Header.Get("X-Total"))

	var powers []entities.VirtualPower
	s.Require().NoError(json.Unmarshal(body, &powers))
	s.Require().Len(powers, 2)
	s.Equal(int64(2), powers[0].PowerCount)
	s.Equal(int64(5), powers[1].PowerCount)
	s.Equal("alice", powers[0].Username)

	resp, body = s.request("GET", "/api/v2/matching/powers?limit=1&page=2", "")
	s.Equal(200, resp.StatusCode)
	s.Equal("3", resp.Header.Get("X-Total"))
	s.Require().NoError(json.Unmarshal(body, &powers))
	s.Require().Len(powers, 1)
	s.Equal(uint64(2), powers[0].ID)

	resp, _ = s.request("GET", "/api/v2/matching/powers?order_by=username", "")
	s.Equal(422, resp.StatusCode)
}

func (s *RoutesTestSuite) TestGetQueue() {
	_, err := s.queue.Enqueue(engines.MatchingJobKind, nil)
	s.Require().NoError(err)

	resp, body := s.request("GET", "/api/v2/matching/queue", "")
	s.Equal(200, resp.StatusCode)

	var stats workers.Stats
	s.Require().NoError(json.Unmarshal(body, &stats))
	s.Equal(workers.QueueIdle, stats.State)
	s.Equal(1, stats.Pending)
}

func TestRoutes(t *testing.T) {
	suite.Run(t, new(RoutesTestSuite))
}
