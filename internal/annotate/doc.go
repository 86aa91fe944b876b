// Package annotate links a branch's latest benchmark artifact, and the
// reference branch's, into a comment on the branch's pull request.
//
// For both branches the annotator takes the newest completed workflow run and
// that run's first artifact, then builds
//
//	https://<host>/<owner>/<repo>/suites/<check_suite_id>/artifacts/<artifact_id>
//
// The two run lookups are independent and run concurrently. An empty run,
// artifact or pull request list stops the run with the matching sentinel
// error from package github; nothing is posted in that case. Posting is not
// idempotent: every run adds a new comment.
package annotate
