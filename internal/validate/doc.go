// Package validate produces the validation output document for a build.
package validate
