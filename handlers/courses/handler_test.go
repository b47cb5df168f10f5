package courses

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/devxankit/eduvado-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func TestGetAllCourses_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "courses" WHERE is_active = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "title", "price", "is_active"}).
			AddRow("c0000000-0000-0000-0000-000000000001", "Go from scratch", 999, true).
			AddRow("c0000000-0000-0000-0000-000000000002", "SQL essentials", 499, true))

	r := testutils.SetupTestRouter()
	r.GET("/courses", GetAllCourses)

	req, _ := http.NewRequest(http.MethodGet, "/courses", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	courses := respBody["courses"].([]interface{})
	assert.Len(t, courses, 2)
}

func TestGetCourse_NotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "courses" WHERE id = (.+)`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.GET("/courses/:id", GetCourse)

	req, _ := http.NewRequest(http.MethodGet, "/courses/c0000000-0000-0000-0000-000000000009", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetCourse_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "courses" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "title", "description", "is_active"}).
			AddRow("c0000000-0000-0000-0000-000000000001", "Go from scratch", "Full course", true))

	r := testutils.SetupTestRouter()
	r.GET("/courses/:id", GetCourse)

	req, _ := http.NewRequest(http.MethodGet, "/courses/c0000000-0000-0000-0000-000000000001", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	course := respBody["course"].(map[string]interface{})
	assert.Equal(t, "Go from scratch", course["title"])
}

func TestEnrollCourse_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "courses" WHERE id = (.+)`).
		WillReturnRows(mock.NewRows([]string{"id", "title", "is_active", "enrollment_count"}).
			AddRow("c0000000-0000-0000-0000-000000000001", "Go from scratch", true, 10))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "courses" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/courses/:id/enroll", func(c *gin.Context) {
		c.Set("user_id", "u0000000-0000-0000-0000-000000000001")
	}, EnrollCourse)

	req, _ := http.NewRequest(http.MethodPost, "/courses/c0000000-0000-0000-0000-000000000001/enroll", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Enrolled successfully", respBody["message"])
}
