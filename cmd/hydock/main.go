// Command hydock is a dock for the Hyprland compositor.
package main

func main() {
	Execute()
}
