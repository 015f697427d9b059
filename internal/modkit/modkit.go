// Package modkit wires service modules: shared deps, build options and the module contract
package modkit

import "tasksync/internal/modkit/module"

// Module is the contract every service module satisfies
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
