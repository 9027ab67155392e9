// Package validation binds request data and turns binding or validation
// failures into 400 responses.
//
// Guitars carry no field rules; the only checks are on type shape (an
// integer id, a JSON body). Request types still implement Validatable so
// every route goes through the same pipeline.
package validation
