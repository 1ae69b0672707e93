package handlers

import (
	"log"

	"belajarbahasa/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the enum tags used in request binding tags to
// gin's validator engine.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		log.Printf("Binding validator is not validator/v10; enum tags not registered")
		return
	}

	tags := map[string]func(string) bool{
		"language": func(s string) bool { return models.Language(s).Valid() },
		"title":    func(s string) bool { return models.Title(s).Valid() },
		"qtype":    func(s string) bool { return models.Type(s).Valid() },
		"material": func(s string) bool { return models.Material(s).Valid() },
	}
	for tag, valid := range tags {
		valid := valid
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			log.Printf("Failed to register %s validator: %v", tag, err)
		}
	}
}
