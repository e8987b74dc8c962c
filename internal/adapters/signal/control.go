package signal

func (e *Engine) handlePing() {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	_ = e.sendJSON(resp)
}
