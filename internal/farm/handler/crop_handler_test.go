package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"github.com/xtiwix/farmflow/internal/farm/service"
	"github.com/xtiwix/farmflow/internal/farm/testutil"
)

func setupCropTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewServices(repos, db, nil)
	h := NewCropHandler(svc.Crop)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/crops", h.Create)
	api.GET("/crops", h.List)
	api.GET("/crops/:id", h.Get)
	api.PUT("/crops/:id", h.Update)
	api.DELETE("/crops/:id", h.Delete)
	return router
}

func TestCropCRUD(t *testing.T) {
	router := setupCropTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"name":           "Sunflower",
		"category":       "microgreens",
		"growth_days":    10,
		"blackout_days":  4,
		"soak_hours":     8,
		"yield_per_unit": 8,
		"seed_rate":      125,
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/crops", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Fatalf("expected code 0, got %v", resp["code"])
	}
	data := resp["data"].(map[string]interface{})
	cropID := data["id"].(string)
	if data["unit"] != "oz" {
		t.Fatalf("expected default unit oz, got %v", data["unit"])
	}

	// 详情
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/crops/"+cropID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 更新
	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/crops/"+cropID, map[string]interface{}{"growth_days": 12}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["growth_days"].(float64) != 12 {
		t.Fatalf("growth_days not updated: %s", w.Body.String())
	}

	// 列表
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/crops?category=microgreens", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 crop, got %d", len(items))
	}

	// 删除后详情 404
	w = testutil.DoRequest(router, http.MethodDelete, "/api/v1/crops/"+cropID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/crops/"+cropID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestCropCreateRejectsBadCategory(t *testing.T) {
	router := setupCropTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/crops", map[string]interface{}{
		"name":           "Tomato",
		"category":       "vegetables",
		"growth_days":    60,
		"yield_per_unit": 5,
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCropRequiresAuth(t *testing.T) {
	router := setupCropTest(t)

	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/crops", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestCropTenantIsolation(t *testing.T) {
	router := setupCropTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/crops", map[string]interface{}{
		"name":           "Sunflower",
		"category":       "microgreens",
		"growth_days":    10,
		"yield_per_unit": 8,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	cropID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// 其他租户看不到
	otherToken := testutil.GenerateTestToken("user-other", "tenant-other", "Other User", []string{"farm_admin"})
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/crops/"+cropID, nil, otherToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 across tenants, got %d: %s", w.Code, w.Body.String())
	}
}
