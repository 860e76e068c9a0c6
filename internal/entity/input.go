package entity

// InputState дискретный ввод одного игрока за тик
type InputState struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Start bool `json:"start"`
}

// Any сообщает, нажата ли хоть одна клавиша направления
func (in InputState) Any() bool {
	return in.Up || in.Down || in.Left || in.Right
}
