// Package main serves the smartstepper motor models as a viam module.
package main

import (
	"go.viam.com/rdk/components/motor"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/resource"

	"stepperact/smartstepper"
)

func main() {
	module.ModularMain(
		resource.APIModel{API: motor.API, Model: smartstepper.ModelStartStop},
		resource.APIModel{API: motor.API, Model: smartstepper.ModelRamped},
	)
}
