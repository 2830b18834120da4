package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BindJson 綁定 body；驗證失敗時回 400 並帶出第一個不合格的欄位
func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		body := gin.H{"error": "Invalid request format"}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			body["field"] = verrs[0].Field()
			body["rule"] = verrs[0].Tag()
		}
		c.JSON(http.StatusBadRequest, body)
		return err
	}
	return nil
}

// parseUUIDParam 解析路徑上的 event / booking id
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
