package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/interiora/interiorabackend/dto"
	"github.com/interiora/interiorabackend/models"
	"github.com/interiora/interiorabackend/utils"
)

// Collections is the fixed list of buckets the generic CRUD surface covers.
var Collections = []string{
	"projects",
	"admins",
	"clients",
	"conversations",
	"credentials",
	"designers",
	"orders",
	"payments",
	"productCategories",
	"products",
	"schedules",
	"tests",
	"users",
	"vendors",
}

var collectionSet = func() map[string]bool {
	set := make(map[string]bool, len(Collections))
	for _, name := range Collections {
		set[name] = true
	}
	return set
}()

// RegisterCollectionRoutes binds the uniform CRUD contract for every
// configured collection, plus the two array-patch exceptions and the legacy
// generic resource fetch.
func RegisterCollectionRoutes(r gin.IRouter, open models.Opener) {
	for _, name := range Collections {
		m := models.NewBaseModel(name, open)
		r.GET("/"+name, GetAll(m))
		r.GET("/"+name+"/:id", GetByID(m))
		r.POST("/"+name, Create(m))
		r.PUT("/"+name+"/:id", Update(m))
		r.PATCH("/"+name+"/:id", Update(m))
		r.DELETE("/"+name+"/:id", Delete(m))
	}

	r.PATCH("/designers/:id/vendor-connections", AddVendorConnection(models.NewBaseModel("designers", open)))
	r.PATCH("/conversations/:id/messages", AddConversationMessage(models.NewBaseModel("conversations", open)))
	r.GET("/resources/:resourceType/:id", GetResource(open))
}

func GetAll(m *models.BaseModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := m.FindAll(c.Request.Context(), nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching " + m.Name()})
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func GetByID(m *models.BaseModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := m.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching " + m.Name()})
			return
		}
		if doc == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": m.Name() + " not found"})
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func Create(m *models.BaseModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body bson.M
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(body) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body is required"})
			return
		}

		doc, err := m.Create(c.Request.Context(), body)
		if err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "Duplicate field value entered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating " + m.Name()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": m.Name() + " created successfully",
			"data":    doc,
		})
	}
}

func Update(m *models.BaseModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body bson.M
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := m.UpdateByID(c.Request.Context(), c.Param("id"), body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating " + m.Name()})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": m.Name() + " not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": m.Name() + " updated successfully",
		})
	}
}

func Delete(m *models.BaseModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := m.DeleteByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting " + m.Name()})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": m.Name() + " not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": m.Name() + " deleted successfully",
		})
	}
}

// AddVendorConnection appends a vendor id to a designer's
// vendor_connections array, set-style (no duplicates).
//
// Read-modify-write: two concurrent appends to the same designer can lose
// one update. Mongo's $addToSet is the atomic upgrade path.
func AddVendorConnection(designers *models.BaseModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		var body dto.VendorConnectionDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		designer, err := designers.FindByID(ctx, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating vendor connection"})
			return
		}
		if designer == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Designer not found"})
			return
		}

		connections := stringSlice(designer, "vendor_connections")
		exists := false
		for _, v := range connections {
			if v == body.VendorID {
				exists = true
				break
			}
		}
		if !exists {
			connections = append(connections, body.VendorID)
		}

		res, err := designers.UpdateByID(ctx, id, bson.M{"vendor_connections": connections})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating vendor connection"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Designer not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"message":            "Vendor connection added successfully",
			"vendor_connections": connections,
		})
	}
}

// AddConversationMessage appends a message sub-document to a conversation,
// defaulting its timestamp when the caller omits one. Same read-modify-write
// caveat as AddVendorConnection.
func AddConversationMessage(conversations *models.BaseModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		var message bson.M
		if err := c.ShouldBindJSON(&message); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(message) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message body is required"})
			return
		}

		conversation, err := conversations.FindByID(ctx, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding message to conversation"})
			return
		}
		if conversation == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}

		if _, ok := message["timestamp"]; !ok {
			message["timestamp"] = time.Now().UTC().Format(time.RFC3339)
		}

		messages := anySlice(conversation, "messages")
		messages = append(messages, message)

		res, err := conversations.UpdateByID(ctx, id, bson.M{"messages": messages})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding message to conversation"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Message added successfully",
			"messageObj": message,
		})
	}
}

// GetResource is the legacy generic fetch: any configured collection by
// either identifier.
func GetResource(open models.Opener) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("resourceType")
		if !collectionSet[name] {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection '" + name + "' not found"})
			return
		}

		doc, err := models.NewBaseModel(name, open).FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		if doc == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func stringSlice(doc bson.M, key string) []string {
	out := make([]string, 0)
	switch v := doc[key].(type) {
	case []string:
		out = append(out, v...)
	case bson.A:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func anySlice(doc bson.M, key string) []interface{} {
	switch v := doc[key].(type) {
	case bson.A:
		return append([]interface{}{}, v...)
	case []interface{}:
		return append([]interface{}{}, v...)
	default:
		return []interface{}{}
	}
}
