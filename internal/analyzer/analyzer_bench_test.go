package analyzer

import (
	"strings"
	"testing"
)

var benchTexts = []struct {
	name, lang, text string
}{
	{"en_short", "en", "The quick brown fox jumps over the lazy dog"},
	{"en_long", "en", strings.Repeat("Monsoon rains reached the Kerala coast early this year, flooding backwaters and delaying harvests. ", 40)},
	{"hi", "hi", strings.Repeat("भारत की राजधानी नई दिल्ली है और यहाँ की जनसंख्या बहुत अधिक है। ", 40)},
	{"ta", "ta", strings.Repeat("தமிழ்நாடு இந்தியாவின் தெற்கே அமைந்துள்ள ஒரு மாநிலம். ", 40)},
	{"te", "te", strings.Repeat("హైదరాబాద్ తెలంగాణ రాష్ట్ర రాజధాని నగరం. ", 40)},
}

func BenchmarkTokenize(b *testing.B) {
	an := New()
	for _, bt := range benchTexts {
		b.Run(bt.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(bt.text)))
			for i := 0; i < b.N; i++ {
				_ = an.Tokenize(bt.text, bt.lang)
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	an := New()
	text := benchTexts[1].text
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = an.Terms(text, "en")
		}
	})
}

func BenchmarkEnglishStem(b *testing.B) {
	words := []string{
		"running", "searching", "indexing", "tokenization", "normalization",
		"efficiently", "processing", "backwaters", "harvests", "flooding",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			_ = English{}.Stem(w)
		}
	}
}
