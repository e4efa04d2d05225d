package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicDetector(t *testing.T) {
	d := NewHeuristicDetector("en")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "The patient is stable and the results are within normal range.", "en"},
		{"spanish", "El paciente está estable y los resultados son normales para su edad.", "es"},
		{"french", "Le patient est stable et les résultats sont dans la norme pour son âge.", "fr"},
		{"german", "Der Patient ist stabil und die Werte sind nicht auffällig.", "de"},
		{"hindi", "रोगी की स्थिति स्थिर है और परिणाम सामान्य हैं।", "hi"},
		{"chinese", "患者病情稳定，检查结果在正常范围内。", "zh-CN"},
		{"japanese", "おだいじにしてください。ゆっくりやすんでくださいね。", "ja"},
		{"korean", "환자의 상태는 안정적이며 결과는 정상 범위입니다.", "ko"},
		{"russian", "Состояние пациента стабильное, результаты в пределах нормы.", "ru"},
		{"arabic", "حالة المريض مستقرة والنتائج ضمن المعدل الطبيعي.", "ar"},
		{"telugu", "రోగి పరిస్థితి స్థిరంగా ఉంది మరియు ఫలితాలు సాధారణం.", "te"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestHeuristicDetectorShortInputFallsBack(t *testing.T) {
	d := NewHeuristicDetector("en")
	assert.Equal(t, "en", d.Detect("hola"))
	assert.Equal(t, "en", d.Detect(""))
	assert.Equal(t, "en", d.Detect("   "))
}

func TestHeuristicDetectorInconclusiveFallsBack(t *testing.T) {
	d := NewHeuristicDetector("hi")
	assert.Equal(t, "hi", d.Detect("aspirin ibuprofen paracetamol dosage"))
}

func TestHeuristicDetectorDefaultPrimary(t *testing.T) {
	d := NewHeuristicDetector("")
	assert.Equal(t, "en", d.Primary)
}

func TestDetectJapaneseOverHan(t *testing.T) {
	// Hiragana presence distinguishes Japanese from Chinese even though kanji
	// shares the Han range.
	d := NewHeuristicDetector("en")
	got := d.Detect("これはとても簡単なテストです。ありがとうございます。")
	assert.Equal(t, "ja", got)
}
