package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yarn-backend/internal/config"
	"yarn-backend/internal/dashboard"
	"yarn-backend/internal/mailer"
	"yarn-backend/internal/metrics"
	"yarn-backend/internal/models"
	"yarn-backend/internal/permission"
	"yarn-backend/internal/stock"
	"yarn-backend/internal/store"
	"yarn-backend/internal/store/memstore"
)

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Invitation
	down bool // refuse every message
}

func (o *outbox) SendInvitation(_ context.Context, inv mailer.Invitation) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.down {
		return errors.New("smtp unavailable")
	}
	o.sent = append(o.sent, inv)
	return nil
}

func (o *outbox) setDown(down bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.down = down
}

func (o *outbox) lastToken(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)
	parts := strings.SplitN(o.sent[len(o.sent)-1].Link, "token=", 2)
	require.Len(t, parts, 2)
	return parts[1]
}

type testServer struct {
	app   *fiber.App
	store *memstore.Store
	mail  *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		StoreDriver: config.DriverMemory,
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		JWTTTL:      time.Hour,
		InviteTTL:   time.Hour,
		CORSOrigins: "http://localhost:3000",
		AppBaseURL:  "http://localhost:3000",
	}
	s := memstore.New()
	mail := &outbox{}
	app := New(Deps{Config: cfg, Store: s, Log: zap.NewNop(), Mailer: mail, Metrics: metrics.New()})
	return &testServer{app: app, store: s, mail: mail}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type session struct {
	Token      string               `json:"token"`
	Navigation []permission.NavItem `json:"navigation"`
	User       struct {
		ID       string `json:"id"`
		RoleName string `json:"roleName"`
	} `json:"user"`
}

func (ts *testServer) bootstrap(t *testing.T) session {
	t.Helper()
	var s session
	code := ts.do(t, "POST", "/api/auth/register-admin", "", fiber.Map{
		"name": "Owner", "email": "Owner@Example.com", "password": "s3cret-pass",
	}, &s)
	require.Equal(t, fiber.StatusCreated, code)
	require.NotEmpty(t, s.Token)
	return s
}

type idOnly struct {
	ID string `json:"id"`
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/healthz", "", nil, nil))

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(b), "http_requests_total")
}

func TestBootstrapAndLogin(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.bootstrap(t)
	require.Equal(t, models.AdminRoleName, admin.User.RoleName)
	require.Len(t, admin.Navigation, len(permission.Navigation))

	code := ts.do(t, "POST", "/api/auth/register-admin", "", fiber.Map{
		"name": "Other", "email": "other@example.com", "password": "s3cret-pass",
	}, nil)
	require.Equal(t, fiber.StatusForbidden, code)

	var errBody map[string]string
	code = ts.do(t, "POST", "/api/auth/login", "", fiber.Map{"email": "owner@example.com", "password": "nope-nope"}, &errBody)
	require.Equal(t, fiber.StatusUnauthorized, code)
	require.NotEmpty(t, errBody["error"])

	var s session
	code = ts.do(t, "POST", "/api/auth/login", "", fiber.Map{"email": " OWNER@example.com ", "password": "s3cret-pass"}, &s)
	require.Equal(t, fiber.StatusOK, code)
	require.NotEmpty(t, s.Token)

	require.Equal(t, fiber.StatusUnauthorized, ts.do(t, "GET", "/api/auth/me", "", nil, nil))
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/auth/me", s.Token, nil, nil))

	require.Equal(t, fiber.StatusBadRequest, ts.do(t, "POST", "/api/auth/change-password", s.Token,
		fiber.Map{"currentPassword": "wrong-pass", "newPassword": "n3w-password"}, nil))
	require.Equal(t, fiber.StatusNoContent, ts.do(t, "POST", "/api/auth/change-password", s.Token,
		fiber.Map{"currentPassword": "s3cret-pass", "newPassword": "n3w-password"}, nil))
	require.Equal(t, fiber.StatusOK, ts.do(t, "POST", "/api/auth/login", "",
		fiber.Map{"email": "owner@example.com", "password": "n3w-password"}, nil))
}

func TestStockFlow(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.bootstrap(t).Token

	require.Equal(t, fiber.StatusBadRequest, ts.do(t, "POST", "/api/master/categories", tok,
		json.RawMessage(`{"name":"Cotton 40s","noOfCones":12,"weightPerBox":36.5}`), nil))

	var cat idOnly
	require.Equal(t, fiber.StatusCreated, ts.do(t, "POST", "/api/master/categories", tok,
		json.RawMessage(`{"name":"Cotton 40s","noOfCones":12,"weightPerBox":36.25}`), &cat))
	require.Equal(t, fiber.StatusConflict, ts.do(t, "POST", "/api/master/categories", tok,
		json.RawMessage(`{"name":"Cotton 40s","noOfCones":12,"weightPerBox":36}`), nil))

	var party idOnly
	require.Equal(t, fiber.StatusCreated, ts.do(t, "POST", "/api/master/parties", tok,
		fiber.Map{"name": "North Mills", "mobileNo": "9876543210"}, &party))

	inEntry := func(lot, boxes, weight string) int {
		return ts.do(t, "POST", "/api/in-entries", tok, json.RawMessage(`{
			"entryDate":"2024-03-01","purchaseDate":"2024-02-28",
			"categoryId":"`+cat.ID+`","partyId":"`+party.ID+`",
			"lotNo":"`+lot+`","noOfBoxes":`+boxes+`,"weightInKg":`+weight+`}`), nil)
	}
	exEntry := func(lot, weight string) int {
		return ts.do(t, "POST", "/api/ex-entries", tok, json.RawMessage(`{
			"entryDate":"2024-03-05","categoryId":"`+cat.ID+`",
			"lotNo":"`+lot+`","takingWeightInKg":`+weight+`}`), nil)
	}

	require.Equal(t, fiber.StatusBadRequest, inEntry("A", "10", "360.1234"))
	require.Equal(t, fiber.StatusCreated, inEntry("A", "10", "360"))
	require.Equal(t, fiber.StatusCreated, inEntry("B", "5", "100"))

	require.Equal(t, fiber.StatusCreated, exEntry("A", "100"))
	require.Equal(t, fiber.StatusConflict, exEntry("A", "260.001"))
	require.Equal(t, fiber.StatusCreated, exEntry("B", "100"))
	require.Equal(t, fiber.StatusBadRequest, exEntry("Z", "1"))

	var lots []stock.AvailableLot
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/categories/"+cat.ID+"/lots", tok, nil, &lots))
	require.Len(t, lots, 1)
	require.Equal(t, "A", lots[0].LotNo)
	require.Equal(t, int64(7), lots[0].AvailableBoxes)
	require.Equal(t, "260.000", lots[0].AvailableWeightInKg.StringFixed(3))

	var dash dashboard.DashboardResponse
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/dashboard", tok, nil, &dash))
	require.Len(t, dash.Categories, 1)
	require.Equal(t, "460", dash.Categories[0].TotalWeight.String())
	require.Equal(t, "260", dash.Categories[0].AvailableWeight.String())
	require.Equal(t, 1, dash.Categories[0].AvailableLots)

	var detail dashboard.LotDetailResponse
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/dashboard/lots/B?categoryId="+cat.ID, tok, nil, &detail))
	require.True(t, detail.Lot.Exhausted())
	require.Len(t, detail.InEntries, 1)
	require.Len(t, detail.ExEntries, 1)

	var bEntries []idOnly
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/in-entries?lotNo=B&from=2024-03-01&to=2024-03-01", tok, nil, &bEntries))
	require.Len(t, bEntries, 1)
	editB := func(weight string) int {
		return ts.do(t, "PUT", "/api/in-entries/"+bEntries[0].ID, tok, json.RawMessage(`{
			"entryDate":"2024-03-01","purchaseDate":"2024-02-28",
			"categoryId":"`+cat.ID+`","partyId":"`+party.ID+`",
			"lotNo":"B","noOfBoxes":5,"weightInKg":`+weight+`}`), nil)
	}
	require.Equal(t, fiber.StatusConflict, editB("50"))
	require.Equal(t, fiber.StatusOK, editB("120"))

	require.Equal(t, fiber.StatusConflict, ts.do(t, "DELETE", "/api/master/categories/"+cat.ID, tok, nil, nil))
	require.Equal(t, fiber.StatusConflict, ts.do(t, "DELETE", "/api/master/parties/"+party.ID, tok, nil, nil))

	req := httptest.NewRequest("GET", "/api/reports/stock.xlsx", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	var logs []models.AuditLog
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/audit-logs?entityType=ex_entry", tok, nil, &logs))
	require.Len(t, logs, 2)
}

func TestInvitedUserPermissions(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.bootstrap(t)

	var role idOnly
	require.Equal(t, fiber.StatusCreated, ts.do(t, "POST", "/api/accounts/roles", admin.Token, fiber.Map{
		"name": "Viewer",
		"permissions": fiber.Map{
			"dashboard": fiber.Map{"view": true},
			"accounts":  fiber.Map{"role": fiber.Map{"view": true}},
		},
	}, &role))

	var user idOnly
	require.Equal(t, fiber.StatusCreated, ts.do(t, "POST", "/api/accounts/users", admin.Token,
		fiber.Map{"email": "viewer@example.com", "roleId": role.ID}, &user))
	require.Equal(t, fiber.StatusConflict, ts.do(t, "POST", "/api/accounts/users", admin.Token,
		fiber.Map{"email": "viewer@example.com", "roleId": role.ID}, nil))

	// invited users cannot log in yet
	require.Equal(t, fiber.StatusUnauthorized, ts.do(t, "POST", "/api/auth/login", "",
		fiber.Map{"email": "viewer@example.com", "password": "whatever1"}, nil))

	require.Equal(t, fiber.StatusOK, ts.do(t, "POST", "/api/accounts/users/"+user.ID+"/resend-invite", admin.Token, nil, nil))
	token := ts.mail.lastToken(t)

	var invite map[string]string
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/auth/invitations/"+token, "", nil, &invite))
	require.Equal(t, "viewer@example.com", invite["email"])

	var s session
	require.Equal(t, fiber.StatusOK, ts.do(t, "POST", "/api/auth/invitations/"+token+"/accept", "",
		fiber.Map{"name": "Vera", "password": "viewer-pass"}, &s))
	require.Equal(t, fiber.StatusConflict, ts.do(t, "POST", "/api/auth/invitations/"+token+"/accept", "",
		fiber.Map{"name": "Vera", "password": "viewer-pass"}, nil))

	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/dashboard", s.Token, nil, nil))
	require.Equal(t, fiber.StatusForbidden, ts.do(t, "POST", "/api/master/categories", s.Token,
		json.RawMessage(`{"name":"Silk","noOfCones":6,"weightPerBox":20}`), nil))
	require.Equal(t, fiber.StatusForbidden, ts.do(t, "GET", "/api/audit-logs", s.Token, nil, nil))

	var access struct {
		Route   string `json:"route"`
		Allowed bool   `json:"allowed"`
	}
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/access?route=/accounts/role/", s.Token, nil, &access))
	require.True(t, access.Allowed)
	require.Equal(t, "/accounts/role", access.Route)
	ts.do(t, "GET", "/api/access?route=/accounts/user", s.Token, nil, &access)
	require.False(t, access.Allowed)

	ts.do(t, "GET", "/api/access?route=/dashboard&roleId="+role.ID, admin.Token, nil, &access)
	require.True(t, access.Allowed)
	ts.do(t, "GET", "/api/access?route=/dashboard&roleId=missing", admin.Token, nil, &access)
	require.False(t, access.Allowed)
	// an unmapped route stays open even for the preview of an existing role
	ts.do(t, "GET", "/api/access?route=/settings&roleId="+role.ID, admin.Token, nil, &access)
	require.True(t, access.Allowed)

	var nav []permission.NavItem
	require.Equal(t, fiber.StatusOK, ts.do(t, "GET", "/api/navigation", s.Token, nil, &nav))
	require.Len(t, nav, 2)
	require.Equal(t, "Dashboard", nav[0].Title)
	require.Equal(t, "Accounts", nav[1].Title)
	require.Len(t, nav[1].Children, 1)

	// role in use, then joined user soft-deleted, then role deletable
	require.Equal(t, fiber.StatusConflict, ts.do(t, "DELETE", "/api/accounts/roles/"+role.ID, admin.Token, nil, nil))
	require.Equal(t, fiber.StatusNoContent, ts.do(t, "DELETE", "/api/accounts/users/"+user.ID, admin.Token, nil, nil))
	require.Equal(t, fiber.StatusUnauthorized, ts.do(t, "GET", "/api/dashboard", s.Token, nil, nil))
	require.Equal(t, fiber.StatusNoContent, ts.do(t, "DELETE", "/api/accounts/roles/"+role.ID, admin.Token, nil, nil))

	u, err := ts.store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, u.IsDeleted)
}

func TestAdminProtections(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.bootstrap(t)

	adminRole, err := ts.store.GetRoleByName(context.Background(), models.AdminRoleName)
	require.NoError(t, err)

	require.Equal(t, fiber.StatusForbidden, ts.do(t, "PUT", "/api/accounts/roles/"+adminRole.ID, admin.Token,
		fiber.Map{"name": "Boss"}, nil))
	require.Equal(t, fiber.StatusForbidden, ts.do(t, "DELETE", "/api/accounts/roles/"+adminRole.ID, admin.Token, nil, nil))
	require.Equal(t, fiber.StatusBadRequest, ts.do(t, "POST", "/api/accounts/roles", admin.Token,
		fiber.Map{"name": "admin"}, nil))
	require.Equal(t, fiber.StatusBadRequest, ts.do(t, "DELETE", "/api/accounts/users/"+admin.User.ID, admin.Token, nil, nil))

	// invited users are removed outright
	var user idOnly
	require.Equal(t, fiber.StatusCreated, ts.do(t, "POST", "/api/accounts/users", admin.Token,
		fiber.Map{"email": "temp@example.com", "roleId": adminRole.ID}, &user))
	require.Equal(t, fiber.StatusNoContent, ts.do(t, "DELETE", "/api/accounts/users/"+user.ID, admin.Token, nil, nil))
	require.Equal(t, fiber.StatusNotFound, ts.do(t, "GET", "/api/accounts/users/"+user.ID, admin.Token, nil, nil))
	count, err := ts.store.CountUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestInviteNotKeptWhenMailFails(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.bootstrap(t)
	adminRole, err := ts.store.GetRoleByName(context.Background(), models.AdminRoleName)
	require.NoError(t, err)
	invite := fiber.Map{"email": "late@example.com", "roleId": adminRole.ID}

	ts.mail.setDown(true)
	require.Equal(t, fiber.StatusBadGateway, ts.do(t, "POST", "/api/accounts/users", admin.Token, invite, nil))
	_, err = ts.store.GetUserByEmail(context.Background(), "late@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	var logs []models.AuditLog
	ts.do(t, "GET", "/api/audit-logs?entityType=user", admin.Token, nil, &logs)
	require.Len(t, logs, 1) // the bootstrap admin only

	ts.mail.setDown(false)
	require.Equal(t, fiber.StatusCreated, ts.do(t, "POST", "/api/accounts/users", admin.Token, invite, nil))
}

func TestReinviteDeletedUser(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.bootstrap(t)
	ctx := context.Background()
	adminRole, err := ts.store.GetRoleByName(ctx, models.AdminRoleName)
	require.NoError(t, err)

	joined := models.User{
		Email: "gone@example.com", Name: "Gone", RoleID: &adminRole.ID,
		Status: models.UserStatusJoined, PasswordHash: "x",
	}
	require.NoError(t, ts.store.CreateUser(ctx, &joined))
	require.Equal(t, fiber.StatusNoContent, ts.do(t, "DELETE", "/api/accounts/users/"+joined.ID, admin.Token, nil, nil))

	var listed []idOnly
	ts.do(t, "GET", "/api/accounts/users", admin.Token, nil, &listed)
	require.Len(t, listed, 1)

	// a failed send leaves the account deleted
	ts.mail.setDown(true)
	invite := fiber.Map{"email": "Gone@example.com", "roleId": adminRole.ID}
	require.Equal(t, fiber.StatusBadGateway, ts.do(t, "POST", "/api/accounts/users", admin.Token, invite, nil))
	u, err := ts.store.GetUser(ctx, joined.ID)
	require.NoError(t, err)
	require.True(t, u.IsDeleted)
	require.Equal(t, models.UserStatusJoined, u.Status)

	ts.mail.setDown(false)
	var revived idOnly
	require.Equal(t, fiber.StatusCreated, ts.do(t, "POST", "/api/accounts/users", admin.Token, invite, &revived))
	require.Equal(t, joined.ID, revived.ID)

	u, err = ts.store.GetUser(ctx, joined.ID)
	require.NoError(t, err)
	require.False(t, u.IsDeleted)
	require.Equal(t, models.UserStatusInvited, u.Status)
	require.Empty(t, u.PasswordHash)
	require.Empty(t, u.Name)

	ts.do(t, "GET", "/api/accounts/users", admin.Token, nil, &listed)
	require.Len(t, listed, 2)
	require.Equal(t, fiber.StatusConflict, ts.do(t, "POST", "/api/accounts/users", admin.Token, invite, nil))
}

func TestConcurrentRegisterAdminCreatesOneUser(t *testing.T) {
	ts := newTestServer(t)

	const callers = 4
	codes := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, _ := json.Marshal(fiber.Map{
				"name": "Owner", "email": "owner" + string(rune('a'+i)) + "@example.com", "password": "s3cret-pass",
			})
			req := httptest.NewRequest("POST", "/api/auth/register-admin", bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			resp, err := ts.app.Test(req, -1)
			if err == nil {
				codes[i] = resp.StatusCode
			}
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == fiber.StatusCreated {
			created++
		} else {
			require.Equal(t, fiber.StatusForbidden, code)
		}
	}
	require.Equal(t, 1, created)

	count, err := ts.store.CountUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
