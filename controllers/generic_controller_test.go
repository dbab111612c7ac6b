package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/interiora/interiorabackend/controllers"
	"github.com/interiora/interiorabackend/testutil"
)

func newRouter(db *testutil.FakeDB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	controllers.RegisterCollectionRoutes(r, db.Open)
	return r
}

func TestListCollection(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Seed("projects",
		bson.M{"id": "p1", "name": "Loft"},
		bson.M{"id": "p2", "name": "Studio"},
	)
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Loft")
	assert.Contains(t, w.Body.String(), "Studio")
}

func TestListEmptyCollectionIsAnArray(t *testing.T) {
	r := newRouter(testutil.NewFakeDB())

	w := testutil.PerformRequest(t, r, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetByIDBothIdentifiers(t *testing.T) {
	db := testutil.NewFakeDB()
	oid := bson.NewObjectID()
	db.Seed("clients", bson.M{"_id": oid, "id": "client_1", "name": "Casa"})
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodGet, "/clients/client_1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.PerformRequest(t, r, http.MethodGet, "/clients/"+oid.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetByIDNotFound(t *testing.T) {
	r := newRouter(testutil.NewFakeDB())

	w := testutil.PerformRequest(t, r, http.MethodGet, "/clients/client_missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, "clients not found", body["error"])
}

func TestCreateDocument(t *testing.T) {
	db := testutil.NewFakeDB()
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodPost, "/projects", bson.M{
		"id": "project_1", "name": "Loft", "designer_id": "d1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["_id"])
	assert.NotEmpty(t, data["createdAt"])

	assert.Len(t, db.Collection("projects").All(), 1)
}

func TestCreateRejectsEmptyBody(t *testing.T) {
	r := newRouter(testutil.NewFakeDB())

	w := testutil.PerformRequest(t, r, http.MethodPost, "/projects", bson.M{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateDocument(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Seed("projects", bson.M{"id": "project_1", "status": "active"})
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodPut, "/projects/project_1", bson.M{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", db.Collection("projects").All()[0]["status"])

	// PATCH is treated the same as PUT
	w = testutil.PerformRequest(t, r, http.MethodPatch, "/projects/project_1", bson.M{"status": "archived"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "archived", db.Collection("projects").All()[0]["status"])
}

func TestUpdateNotFound(t *testing.T) {
	r := newRouter(testutil.NewFakeDB())

	w := testutil.PerformRequest(t, r, http.MethodPut, "/projects/project_missing", bson.M{"status": "done"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteDocument(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Seed("vendors", bson.M{"id": "vendor_1"})
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodDelete, "/vendors/vendor_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, db.Collection("vendors").All())

	w = testutil.PerformRequest(t, r, http.MethodDelete, "/vendors/vendor_1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStoreFaultIs500(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Collection("projects").Err = assert.AnError
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, "Error fetching projects", body["error"])
}

func TestAddVendorConnectionIsIdempotent(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Seed("designers", bson.M{"id": "d1"})
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodPatch, "/designers/d1/vendor-connections", bson.M{"vendorId": "v1"})
	require.Equal(t, http.StatusOK, w.Code)

	// appending the same vendor again must not duplicate it
	w = testutil.PerformRequest(t, r, http.MethodPatch, "/designers/d1/vendor-connections", bson.M{"vendorId": "v1"})
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.DecodeJSON(t, w.Body)
	connections := body["vendor_connections"].([]interface{})
	assert.Equal(t, []interface{}{"v1"}, connections)
}

func TestAddVendorConnectionValidation(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Seed("designers", bson.M{"id": "d1"})
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodPatch, "/designers/d1/vendor-connections", bson.M{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.PerformRequest(t, r, http.MethodPatch, "/designers/d_missing/vendor-connections", bson.M{"vendorId": "v1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddConversationMessage(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Seed("conversations", bson.M{"id": "conv1", "participants": []string{"d1", "c1"}})
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodPatch, "/conversations/conv1/messages", bson.M{
		"sender": "d1", "text": "hello",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.DecodeJSON(t, w.Body)
	msg := body["messageObj"].(map[string]interface{})
	assert.NotEmpty(t, msg["timestamp"], "a missing timestamp gets stamped")

	stored := db.Collection("conversations").All()[0]
	messages := stored["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.NotNil(t, stored["updatedAt"])
}

func TestAddConversationMessageKeepsCallerTimestamp(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Seed("conversations", bson.M{"id": "conv1"})
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodPatch, "/conversations/conv1/messages", bson.M{
		"sender": "d1", "text": "hello", "timestamp": "2026-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.DecodeJSON(t, w.Body)
	msg := body["messageObj"].(map[string]interface{})
	assert.Equal(t, "2026-01-01T00:00:00Z", msg["timestamp"])
}

func TestAddConversationMessageNotFound(t *testing.T) {
	r := newRouter(testutil.NewFakeDB())

	w := testutil.PerformRequest(t, r, http.MethodPatch, "/conversations/conv_missing/messages", bson.M{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Two concurrent message appends to the same conversation go through
// fetch-mutate-write and can clobber each other, so asserting both persist
// is inherently flaky. Kept as a skipped record of the limitation.
func TestConcurrentMessageAppendsCanLoseOne(t *testing.T) {
	t.Skip("lost-update race in the read-modify-write append; see AddConversationMessage")
}

func TestResourceFetch(t *testing.T) {
	db := testutil.NewFakeDB()
	db.Seed("schedules", bson.M{"id": "s1", "title": "Site visit"})
	r := newRouter(db)

	w := testutil.PerformRequest(t, r, http.MethodGet, "/resources/schedules/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.PerformRequest(t, r, http.MethodGet, "/resources/schedules/s_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.PerformRequest(t, r, http.MethodGet, "/resources/widgets/s1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, "Collection 'widgets' not found", body["error"])
}
