package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"rentpayout/internal/handlers"
	"rentpayout/internal/middleware"
	"rentpayout/internal/models"
	"rentpayout/internal/payout"
	"rentpayout/internal/routes"
	"rentpayout/internal/stream"
	"rentpayout/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const triggerKey = "integration-key"

var day0 = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

// testEnv is a full API stack over an in-memory database
type testEnv struct {
	BaseURL string
	DB      *gorm.DB
	Hub     *stream.Hub

	mu  sync.Mutex
	now time.Time
}

func (e *testEnv) setNow(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = t
}

func (e *testEnv) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	env := &testEnv{DB: db, now: day0}
	log, _ := test.NewNullLogger()
	cfg := config.ServerConfig{
		GinMode:        gin.TestMode,
		TriggerKey:     triggerKey,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}

	store := payout.NewGormStore(db)
	env.Hub = stream.NewHub(log, nil)
	t.Cleanup(env.Hub.Close)
	engine := payout.NewEngine(store,
		payout.WithNotifier(env.Hub),
		payout.WithLogger(log),
		payout.WithClock(env.clock),
	)
	h := handlers.NewPayoutHandler(engine, store, time.Minute, log)

	srv := httptest.NewServer(routes.SetupRouter(cfg, h, env.Hub, log))
	t.Cleanup(srv.Close)
	env.BaseURL = srv.URL
	return env
}

// seedInvestment stores a plan, the owner's balance and an active investment
func (e *testEnv) seedInvestment(t *testing.T, userID uuid.UUID, principal, percent string, days int) *models.Investment {
	t.Helper()
	plan := &models.Plan{Name: "Daily", DailyReturnPercent: decimal.RequireFromString(percent), DurationDays: days, IsActive: true}
	require.NoError(t, e.DB.Create(plan).Error)

	var count int64
	require.NoError(t, e.DB.Model(&models.Balance{}).Where("user_id = ?", userID).Count(&count).Error)
	if count == 0 {
		require.NoError(t, e.DB.Create(&models.Balance{UserID: userID}).Error)
	}

	inv := &models.Investment{
		UserID:          userID,
		PlanID:          plan.ID,
		PrincipalAmount: decimal.RequireFromString(principal),
		StartAt:         day0,
		EndAt:           day0.Add(time.Duration(days) * payout.Period),
		Status:          models.InvestmentStatusActive,
	}
	require.NoError(t, e.DB.Create(inv).Error)
	return inv
}

func (e *testEnv) trigger(t *testing.T) (*http.Response, handlers.RunResp) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.BaseURL+"/payout-runs", bytes.NewReader(nil))
	require.NoError(t, err)
	req.Header.Set(middleware.TriggerKeyHeader, triggerKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body handlers.RunResp
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func (e *testEnv) getJSON(t *testing.T, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(e.BaseURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) balance(t *testing.T, userID uuid.UUID) models.Balance {
	t.Helper()
	var b models.Balance
	require.NoError(t, e.DB.Where("user_id = ?", userID).First(&b).Error)
	return b
}
