package bot

// Static replies.
const (
	msgSearchUsage    = "Please provide a search query. Example: /search products"
	msgUnknownCommand = "Sorry, I don't know that command. Send /help to see what I can do."
	msgVoiceDisabled  = "🎤 I received your voice message! For now, please type your question about your Google Sheets data. Voice processing will be enhanced in future updates."
	msgVoiceTooLong   = "Sorry, that voice message is too long. Please keep it under %d seconds."
	msgHeardPrefix    = "🎤 I heard: "
)

const startText = `Welcome to the Google Sheets Bot!

I can help you retrieve and search data from your Google Sheets.

Available Commands:
/start - Show this welcome message
/help - Show help information
/summary - Get data summary
/search <query> - Search for specific data
/refresh - Refresh data from Google Sheets

How to use:
Just send me a question or search term, and I'll look it up in your Google Sheets data!

Example: "Find all products with price > 100"`

const helpText = `Help Guide

Commands:
• /start - Welcome message
• /help - This help message
• /summary - Get overview of your data
• /search <query> - Search for specific information
• /refresh - Reload data from Google Sheets

Search Examples:
• "products with price > 50"
• "customers from New York"
• "orders from last month"
• "John Smith"

Tips:
• You can ask questions in natural language
• Search is case-insensitive
• I'll show you the most relevant results`

const voiceStartText = `🎤 Welcome to the Voice-Enabled Google Sheets Bot!

I can help you retrieve and search data from your Google Sheets using both text and voice!

Available Commands:
/start - Show this welcome message
/help - Show help information
/summary - Get data summary
/search <query> - Search for specific data
/refresh - Refresh data from Google Sheets

Voice Features:
🎤 Send me a voice message asking about your data
🔊 I'll respond with both text and voice
📊 Ask questions like "What are my tasks?" or "Find customers from New York"

How to use:
• Type your questions normally
• Send voice messages for hands-free interaction
• I'll search your Google Sheets and respond with voice!

Example: Send a voice message saying "Find all products with price greater than 100"`

const voiceHelpText = `🎤 Voice-Enabled Bot Help Guide

Commands:
• /start - Welcome message
• /help - This help message
• /summary - Get overview of your data
• /search <query> - Search for specific information
• /refresh - Reload data from Google Sheets

Voice Features:
🎤 Send voice messages asking about your data
🔊 Get voice responses back
📊 Natural language voice queries

Voice Examples:
• "What are my tasks?"
• "Find customers from New York"
• "Show me products with high prices"
• "What's my data summary?"

Tips:
• Speak clearly for best recognition
• You can ask questions in natural language
• Search is case-insensitive
• I'll show you the most relevant results`
