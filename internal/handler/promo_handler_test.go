package handler_test

import (
	"net/http"
	"testing"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestValidatePromo(t *testing.T) {
	tests := []struct {
		name   string
		result *model.PromoValidation
	}{
		{"valid", &model.PromoValidation{Valid: true, Message: model.PromoMessageValid, DiscountPercent: 20}},
		{"unknown", &model.PromoValidation{Valid: false, Message: model.PromoMessageInvalid}},
		{"expired", &model.PromoValidation{Valid: false, Message: model.PromoMessageExpired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupTestRouter()
			m.promos.On("ValidatePromo", mock.Anything, "vip20").Return(tt.result, nil).Once()

			w := serve(router, createJSONHTTPRequest("POST", "/api/v1/promos/validate", map[string]string{"code": "vip20"}))

			assert.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.result.Valid, body["valid"])
			assert.Equal(t, tt.result.Message, body["message"])
		})
	}

	t.Run("missing code", func(t *testing.T) {
		router, m := setupTestRouter()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/promos/validate", map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "code", body["field"])
		assert.Equal(t, "required", body["rule"])
		m.promos.AssertNotCalled(t, "ValidatePromo")
	})
}

func TestAdminPromos(t *testing.T) {
	t.Run("create defaults to active", func(t *testing.T) {
		router, m := setupTestRouter()
		m.promos.On("Create", mock.Anything, mock.MatchedBy(func(p *model.PromoCode) bool {
			return p.Code == "VIP20" && p.IsActive && p.DiscountPercent == 20
		})).Return(&model.PromoCode{Code: "VIP20", DiscountPercent: 20, IsActive: true}, nil).Once()

		req := withAuth(createJSONHTTPRequest("POST", "/api/v1/admin/promos", map[string]interface{}{
			"code": "VIP20", "discount_percent": 20,
		}), adminToken(t, "admin"))
		w := serve(router, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		m.promos.AssertExpectations(t)
	})

	t.Run("create duplicate", func(t *testing.T) {
		router, m := setupTestRouter()
		m.promos.On("Create", mock.Anything, mock.Anything).Return(nil, apperrors.ErrPromoExists).Once()

		req := withAuth(createJSONHTTPRequest("POST", "/api/v1/admin/promos", map[string]interface{}{
			"code": "VIP20", "discount_percent": 20,
		}), adminToken(t, "admin"))
		w := serve(router, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("discount over 100 rejected", func(t *testing.T) {
		router, m := setupTestRouter()

		req := withAuth(createJSONHTTPRequest("POST", "/api/v1/admin/promos", map[string]interface{}{
			"code": "VIP20", "discount_percent": 150,
		}), adminToken(t, "admin"))
		w := serve(router, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.promos.AssertNotCalled(t, "Create")
	})

	t.Run("deactivate", func(t *testing.T) {
		router, m := setupTestRouter()
		m.promos.On("Update", mock.Anything, "VIP20", mock.MatchedBy(func(p model.UpdatePromoParams) bool {
			return p.IsActive != nil && !*p.IsActive
		})).Return(&model.PromoCode{Code: "VIP20", IsActive: false}, nil).Once()

		req := withAuth(createJSONHTTPRequest("PUT", "/api/v1/admin/promos/VIP20", map[string]interface{}{
			"is_active": false,
		}), adminToken(t, "admin"))
		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("redemptions", func(t *testing.T) {
		router, m := setupTestRouter()
		m.promos.On("Redemptions", mock.Anything, "vip20").Return([]*model.TicketPurchase{
			{BookingRef: "RST-AAAAAA"}, {BookingRef: "RST-BBBBBB"},
		}, nil).Once()

		w := serve(router, withAuth(createJSONHTTPRequest("GET", "/api/v1/admin/promos/vip20/redemptions", nil), adminToken(t, "admin")))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "VIP20", body["code"])
		assert.Len(t, body["purchases"], 2)
	})
}
