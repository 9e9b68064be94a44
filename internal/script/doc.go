// Package script exposes explicitly registered properties and events to Lua.
//
// Nothing is discovered at run time: the application registers each
// property and event under a name, and scripts reach them through the
// global "widgetry" module:
//
//	print(widgetry.get("counter.count"))
//	widgetry.set("counter.label", "Clicks")
//	local id = widgetry.on("counter.clicked", function(info)
//	    widgetry.log("clicked at " .. info.X)
//	end)
//	widgetry.off(id)
//
// Read-only properties reject set. Event handlers written in Lua are
// ordinary channel handlers; a Lua error becomes the handler's error and
// is aggregated by Raise like any other failure.
//
// A Host and its Lua state are not goroutine-safe. Use them on the UI loop
// goroutine, where events are raised.
package script
