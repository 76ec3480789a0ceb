package session

// Effect is a device-facing side effect: a named feedback tone, a vibration
// pattern, and optionally a system notification. Tone synthesis and OS
// notification display stay on the device; the server only names them.
type Effect struct {
	Tone      string `json:"tone,omitempty"`
	Vibration []int  `json:"vibration,omitempty"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

const notifyIcon = "https://cdn-icons-png.flaticon.com/512/2913/2913520.png"

func questionEffect() Effect {
	return Effect{
		Tone:      "question",
		Vibration: []int{300, 100, 300},
		Title:     "⚡ سؤال جديد!",
		Body:      "أسرع للإجابة وكسب النقاط",
		Icon:      notifyIcon,
	}
}

func commandEffect(text string) Effect {
	return Effect{
		Tone:      "alert",
		Vibration: []int{500, 200, 500, 200, 500},
		Title:     "⚠️ أمر من القائد",
		Body:      text,
		Icon:      notifyIcon,
	}
}

func toneEffect(name string) Effect {
	return Effect{Tone: name}
}
