package render

// smileys maps the server's smiley codes to their images.
var smileys = []struct {
	code, src string
}{
	{"[:-)]", "https://o00o.cz/2008/o/ikony/s_24.gif"},
	{"[:->]", "https://o00o.cz/2008/o/ikony/s_25.gif"},
	{"[:-D]", "https://o00o.cz/2008/o/ikony/s_16.gif"},
	{"[;-D]", "https://o00o.cz/2008/o/ikony/s_17.gif"},
	{"[;-)]", "https://o00o.cz/2008/o/ikony/s_11.gif"},
	{"[:-|]", "https://o00o.cz/2008/o/ikony/s_09.gif"},
	{"[:-o]", "https://o00o.cz/2008/o/ikony/s_15.gif"},
	{"[8-o]", "https://o00o.cz/2008/o/ikony/s_13.gif"},
	{"[:-(]", "https://o00o.cz/2008/o/ikony/s_07.gif"},
	{"[:-E]", "https://o00o.cz/2008/o/ikony/s_06.gif"},
	{"[;-(]", "https://o00o.cz/2008/o/ikony/s_58.gif"},
	{"[:-c]", "https://o00o.cz/2008/o/ikony/s_08.gif"},
	{"[:-Q]", "https://o00o.cz/2008/o/ikony/s_12.gif"},
	{"[:-3]", "https://o00o.cz/2008/o/ikony/s_14.gif"},
	{"[:-$]", "https://o00o.cz/2008/o/ikony/s_18.gif"},
	{"[O:-)]", "https://o00o.cz/2008/o/ikony/s_19.gif"},
	{"[]:-)]", "https://o00o.cz/2008/o/ikony/s_20.gif"},
	{"[Z]", "https://o00o.cz/2008/o/ikony/s_10.gif"},
	{"[?]", "https://o00o.cz/2008/o/ikony/s_21.gif"},
	{"[!]", "https://o00o.cz/2008/o/ikony/s_05.gif"},
	{"[R^]", "https://o00o.cz/2008/o/ikony/s_22.gif"},
	{"[Rv]", "https://o00o.cz/2008/o/ikony/s_23.gif"},
	{"[O=]", "https://o00o.cz/2008/o/ikony/s_26.gif"},
	{"[@)->-]", "https://o00o.cz/2008/o/ikony/s_27.gif"},
	{"[*O]", "https://o00o.cz/2008/o/ikony/s_28.gif"},
	{"[8=]", "https://o00o.cz/2008/o/ikony/s_29.gif"},
	{"[$>]", "https://o00o.cz/2008/o/ikony/s_30.gif"},
}

// Smileys lists the known smiley codes in picker order.
func Smileys() []string {
	out := make([]string, len(smileys))
	for i, s := range smileys {
		out[i] = s.code
	}
	return out
}
