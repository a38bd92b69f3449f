package engine

import "github.com/planfind/planfind/backend-go/internal/floorplan"

// roomTypeLabels maps survey room type codes to display names. Codes
// 1000-1005 are office zones, 1100-1113 are residential presets.
var roomTypeLabels = map[int]string{
	0:  "NONE",
	1:  "거실",
	2:  "다이닝",
	3:  "주방",
	4:  "침실",
	5:  "욕실",
	6:  "화장실",
	7:  "오피스",
	8:  "복도",
	9:  "다용도실",
	10: "저장고",
	11: "벽장",
	12: "랜딩",
	13: "다락방",
	14: "발코니",
	15: "정원",
	16: "파티오",
	17: "주차장",
	18: "현관",
	19: "차고",
	20: "헛간",
	21: "조형 기둥",
	22: "기둥",
	23: "드레스룸",
	24: "붙박이장",
	25: "거실&다이닝",
	26: "미팅룸",
	27: "테라스",
	28: "아이방",
	29: "지하층",

	1000: "임원공간",
	1001: "업무공간",
	1002: "회의공간",
	1003: "소셜공간",
	1004: "지원공간",
	1005: "제외공간",

	1100: "거실",
	1101: "주방",
	1102: "침실",
	1103: "서재",
	1104: "아이방",
	1105: "다용도실",
	1106: "드레스룸",
	1107: "팬트리",
	1108: "다락방",
	1109: "욕실",
	1110: "화장실",
	1111: "테라스",
	1112: "현관",
	1113: "복도",
}

// RoomTypeLabel returns the display name for a type code.
func RoomTypeLabel(code int) (string, bool) {
	label, ok := roomTypeLabels[code]
	return label, ok
}

// RoomLabel returns the label drawn at a room's centroid. Rooms whose type is
// empty, unparsable or unknown have no label.
func RoomLabel(room floorplan.Room) (string, bool) {
	code, ok := room.Type.Code()
	if !ok {
		return "", false
	}
	return RoomTypeLabel(code)
}
