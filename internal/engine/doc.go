// Package engine is the stat/effect simulation core: two independent tick
// cadences drive the player registry (C2) through the activity classifier,
// depletion engine, consumable detector, debuff/buff state machines,
// poison and native-drain engines, speed arbiter, and death broadcaster
// (C1, C5-C12, C18). Every side effect on the game world is routed through
// an injected hostport.HostAdapter; this package never imports a concrete
// game runtime.
package engine
