// Package media validates, normalizes and stores uploaded images.
//
// A Processor turns any accepted upload into a bounded-size JPEG on a white
// background. A MediaStore persists the result and returns the URL clients
// use to fetch it. LocalStore writes to a directory served by the API and
// MinioStore writes to an S3-compatible bucket.
package media
