//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/planfind/planfind/backend-go/internal/engine"
	"github.com/planfind/planfind/backend-go/internal/floorplan"
)

var (
	buf  *engine.CommandBuffer
	ctrl *engine.Controller

	// JS callbacks registered through setCallbacks; zero values are skipped.
	jsHover    js.Value
	jsActivate js.Value
	jsFloor    js.Value
	jsFrame    js.Value
)

func main() {
	buf = engine.NewCommandBuffer(1)
	ctrl = engine.NewController(buf, engine.DefaultStyle())
	ctrl.SetCallbacks(engine.Callbacks{
		OnRoomHoverChange: onRoomHoverChange,
		OnRoomActivate:    onRoomActivate,
		OnFloorActivate:   onFloorActivate,
		OnFrame:           onFrame,
	})

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadFloor", js.FuncOf(loadFloor))
	api.Set("setStyle", js.FuncOf(setStyle))
	api.Set("resize", js.FuncOf(resize))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerLeave", js.FuncOf(pointerLeave))
	api.Set("click", js.FuncOf(click))
	api.Set("setSelectedRoom", js.FuncOf(setSelectedRoom))
	api.Set("activateFloor", js.FuncOf(activateFloor))
	api.Set("setCallbacks", js.FuncOf(setCallbacks))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("buildGeometry", js.FuncOf(buildGeometry))
	api.Set("toWorld", js.FuncOf(toWorld))
	api.Set("getState", js.FuncOf(getState))

	js.Global().Set("floorplanEngine", api)
	js.Global().Set("floorplanWasmReady", js.ValueOf(true))

	select {}
}

// --- Command Handlers ---

// loadFloor takes one floor as JSON; null or an empty string unloads it.
func loadFloor(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].IsNull() || args[0].IsUndefined() || args[0].String() == "" {
		ctrl.LoadFloor(nil)
		return ok()
	}
	var floor floorplan.Floor
	if err := json.Unmarshal([]byte(args[0].String()), &floor); err != nil {
		return fail(err.Error())
	}
	ctrl.LoadFloor(&floor)
	return ok()
}

// setStyle takes YAML (JSON is valid YAML) layered over the default style.
func setStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing style")
	}
	style, err := engine.ParseStyle([]byte(args[0].String()))
	if err != nil {
		return fail(err.Error())
	}

	ctrl.SetStyle(style)
	return ok()
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing width/height")
	}
	if len(args) > 2 {
		buf.SetDPR(args[2].Float())
	}
	ctrl.Resize(args[0].Float(), args[1].Float())
	return ok()
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing x/y")
	}
	ctrl.PointerMove(args[0].Float(), args[1].Float())
	return ok()
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	ctrl.PointerLeave()
	return ok()
}

func click(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing x/y")
	}
	room := ctrl.Click(args[0].Float(), args[1].Float())
	if room == nil {
		return js.ValueOf("")
	}
	return js.ValueOf(room.ID)
}

func setSelectedRoom(this js.Value, args []js.Value) interface{} {
	id := ""
	if len(args) > 0 && !args[0].IsNull() && !args[0].IsUndefined() {
		id = args[0].String()
	}
	ctrl.SetSelectedRoom(id)
	return ok()
}

func activateFloor(this js.Value, args []js.Value) interface{} {
	ctrl.ActivateFloor()
	return ok()
}

// setCallbacks takes an object with any of onRoomHoverChange, onRoomActivate,
// onFloorActivate and onFrame.
func setCallbacks(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].IsNull() || args[0].IsUndefined() {
		jsHover, jsActivate, jsFloor, jsFrame = js.Value{}, js.Value{}, js.Value{}, js.Value{}
		return ok()
	}
	cb := args[0]
	jsHover = cb.Get("onRoomHoverChange")
	jsActivate = cb.Get("onRoomActivate")
	jsFloor = cb.Get("onFloorActivate")
	jsFrame = cb.Get("onFrame")
	return ok()
}

// --- Query Handlers ---

// render returns the draw commands of the last frame as JSON.
func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(buf.JSON())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(toJSON(engine.NewHitResult(ctrl.HitTest(args[0].Float(), args[1].Float()))))
}

// buildGeometry returns the resolved polygons of a floor given as JSON, or of
// the loaded floor when called without arguments.
func buildGeometry(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(toJSON(ctrl.Geometry()))
	}
	var floor floorplan.Floor
	if err := json.Unmarshal([]byte(args[0].String()), &floor); err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(toJSON(engine.BuildGeometry(&floor)))
}

// toWorld maps a viewport position to floor coordinates, or returns null
// while nothing is fitted.
func toWorld(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.Null()
	}
	p, ok := ctrl.ScreenToWorld(args[0].Float(), args[1].Float())
	if !ok {
		return js.Null()
	}
	return js.ValueOf(map[string]interface{}{"x": p.X, "z": p.Z})
}

func getState(this js.Value, args []js.Value) interface{} {
	state := map[string]interface{}{
		"floorId":        ctrl.FloorID(),
		"hoveredRoomId":  ctrl.HoveredRoomID(),
		"selectedRoomId": ctrl.SelectedRoomID(),
		"hasRooms":       ctrl.HasRooms(),
		"cursor":         ctrl.Cursor(),
		"redraws":        ctrl.Redraws(),
	}
	if m, ok := ctrl.Frame().WorldToScreen(); ok {
		state["worldToScreen"] = matrixValue(m)
		state["screenToWorld"] = matrixValue(m.Invert())
	}
	return js.ValueOf(state)
}

func matrixValue(m engine.Matrix2D) []interface{} {
	out := make([]interface{}, len(m))
	for i, v := range m {
		out[i] = v
	}
	return out
}

// --- Callbacks (engine → frontend) ---

func onRoomHoverChange(roomID string) {
	if jsHover.Type() == js.TypeFunction {
		jsHover.Invoke(roomID)
	}
}

func onRoomActivate(room *floorplan.Room) {
	if jsActivate.Type() != js.TypeFunction {
		return
	}
	if room == nil {
		jsActivate.Invoke(js.Null())
		return
	}
	jsActivate.Invoke(toJSON(engine.NewHitResult(ctrl.Geometry().Room(room.ID))))
}

func onFloorActivate(floor *floorplan.Floor) {
	if jsFloor.Type() != js.TypeFunction {
		return
	}
	if floor == nil {
		jsFloor.Invoke(js.Null())
		return
	}
	jsFloor.Invoke(floor.ID, floor.Title)
}

func onFrame(f engine.Frame) {
	if jsFrame.Type() == js.TypeFunction {
		jsFrame.Invoke(buf.JSON())
	}
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}
