package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
)

func setupCardRouter(handler *CardHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.GET("/card", handler.GetOpenBucket)
	auth.POST("/card/settle", handler.SettleBucket)
	return r
}

func TestCardHandler(t *testing.T) {
	t.Run("open bucket without card category", func(t *testing.T) {
		rec := doRequest(setupCardRouter(NewCardHandler(&mockCardService{
			getOpenBucketFn: func(uint) (*services.CardBucket, error) {
				return &services.CardBucket{Total: decimal.Zero, Items: []models.Transaction{}}, nil
			},
		})), "GET", "/card", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["category_id"] != nil {
			t.Errorf("expected null category_id, got %v", result["category_id"])
		}
		if result["total"] != "0" {
			t.Errorf("expected total \"0\", got %v", result["total"])
		}
	})

	t.Run("settle reports the count", func(t *testing.T) {
		var gotUser uint
		rec := doRequest(setupCardRouter(NewCardHandler(&mockCardService{
			settleBucketFn: func(userID uint) (int64, error) {
				gotUser = userID
				return 4, nil
			},
		})), "POST", "/card/settle", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotUser != 1 {
			t.Errorf("expected user 1, got %d", gotUser)
		}
		if parseJSON(t, rec)["settled"].(float64) != 4 {
			t.Error("expected settled 4")
		}
	})
}
