package e2e

import (
	"github.com/cucumber/godog"

	"personas/e2e/steps/profiles"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, w *World) {
	profiles.RegisterSteps(ctx, w, profiles.Seeder{Store: w.Store, Service: w.Service, Audit: w.Audit})
}
