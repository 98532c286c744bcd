// Package imageset keeps the local image directory in step with the remote
// manifest: the Syncer downloads listed images that are missing locally, and
// the Reconciler expires managed images according to the configured retention
// policy. Presence of a file under its final name always means the download
// completed; partial transfers live under a hidden temp name.
package imageset
