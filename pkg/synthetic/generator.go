// Package synthetic produces deterministic placeholder comments for a video
// URL. The output depends only on the URL and the requested count, so the same
// input always yields byte-identical comments.
package synthetic

import (
	"crypto/sha256"
	"math/big"
	"strconv"

	"thirdcoast.systems/tiktok-comments/pkg/comments"
)

const (
	seedModulus  = 100_000_000
	cidBase      = 7_000_000_000_000_000_000
	cidSpan      = 90_000_000
	baseEpoch    = 1727900000
	epochSpan    = 2_000_000
	diggSpanHigh = 120
	diggSpanLow  = 30
)

var sampleTexts = [...]string{
	"This video is pure genius 😂🔥",
	"So true! Everyone can relate 😭",
	"Amazing editing, where did you learn this?",
	"Instant follow. Keep posting!",
	"I showed this to my friends, we love it!",
	"Underrated creator alert 🚨",
	"Algorithm brought me here and I'm glad it did",
	"The transition is so smooth 👏",
	"This deserves more views!",
	"I can't stop rewatching 😅",
}

var sampleAuthors = [...]comments.Author{
	{Nickname: "CreativeSoul", UID: "10029384", UniqueID: "creativesoul_92"},
	{Nickname: "DailyLaughs", UID: "10039485", UniqueID: "dailylaughs24"},
	{Nickname: "EditMaster", UID: "10011122", UniqueID: "editmaster"},
	{Nickname: "TrendyUser", UID: "10055577", UniqueID: "trendyu"},
	{Nickname: "ViewerZero", UID: "10080808", UniqueID: "viewer_zero"},
}

// Seed derives the generator seed for url: SHA-256 of the URL read as a
// big-endian integer, reduced modulo 10^8.
func Seed(url string) uint32 {
	sum := sha256.Sum256([]byte(url))
	n := new(big.Int).SetBytes(sum[:])
	n.Mod(n, big.NewInt(seedModulus))
	return uint32(n.Uint64())
}

// Generate returns exactly max(1, n) synthetic comments for url.
func Generate(url string, n int) []comments.Comment {
	if n < 1 {
		n = 1
	}
	rng := NewXorshift32(Seed(url))

	out := make([]comments.Comment, 0, n)
	for i := 0; i < n; i++ {
		author := sampleAuthors[rng.Intn(len(sampleAuthors))]
		text := sampleTexts[rng.Intn(len(sampleTexts))]
		cid := uint64(cidBase) + uint64(rng.Intn(cidSpan))
		createdAt := int64(baseEpoch) + int64(rng.Intn(epochSpan))
		digg := int64(rng.Intn(diggSpanHigh)) + int64(rng.Intn(diggSpanLow))

		out = append(out, comments.Comment{
			CID:        strconv.FormatUint(cid, 10),
			CreateTime: comments.ISOTime(createdAt),
			DiggCount:  digg,
			Text:       text,
			User:       author,
		})
	}
	return out
}
