// Package helper provides observability spies and database fixtures for the tests of the sqlengine package.
package helper
