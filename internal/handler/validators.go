package handler

import (
	"reflect"
	"strings"
	"sync"

	"venue-booking/internal/pricing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators 註冊自訂 binding tag，需在建立 router 前呼叫
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("isodate", isoDate)
		// 錯誤訊息使用 json 欄位名
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// isoDate accepts YYYY-MM-DD calendar dates only.
func isoDate(fl validator.FieldLevel) bool {
	_, err := pricing.ParseDOB(fl.Field().String())
	return err == nil
}
