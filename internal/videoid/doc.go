// Package videoid extracts TikTok video ids (aweme ids) from share URLs,
// expands short links and derives stable identifiers for videos.
package videoid
